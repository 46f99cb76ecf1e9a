package protocol

// MessageType is the kind of a frame on the stream.
type MessageType uint8

const (
	MessageTypeBinary MessageType = 1
	MessageTypeText   MessageType = 2
)

func (t MessageType) String() string {
	switch t {
	case MessageTypeBinary:
		return "BINARY"
	case MessageTypeText:
		return "TEXT"
	default:
		return "UNKNOWN"
	}
}

// ControlCode is the single byte of a control frame.
type ControlCode uint8

const (
	Cancel             ControlCode = 0
	SyncRequest        ControlCode = 1
	SyncComplete       ControlCode = 2
	EncryptionComplete ControlCode = 3
)

func (c ControlCode) String() string {
	switch c {
	case Cancel:
		return "CANCEL"
	case SyncRequest:
		return "SYNC_REQUEST"
	case SyncComplete:
		return "SYNC_COMPLETE"
	case EncryptionComplete:
		return "ENCRYPTION_COMPLETE"
	default:
		return "UNKNOWN"
	}
}

func (c ControlCode) valid() bool { return c <= EncryptionComplete }

package measurement

type StatusType uint8

const (
	StatusOK StatusType = 1 + iota
	StatusError
	// StatusRollback is a NewOrder voided on purpose.
	StatusRollback
)

func (self StatusType) String() string {
	switch self {
	case StatusOK:
		return "OK"
	case StatusError:
		return "ERROR"
	case StatusRollback:
		return "ROLLBACK"
	default:
		return "UNKNOW_STATUS"
	}
}

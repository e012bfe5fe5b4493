package model

// The enumerations below are closed: a value outside the declared constants
// is reported by Valid and rejected by the validator. The empty value means
// "not set" and is always valid.

// EventStatus is the STATUS of a VEVENT.
type EventStatus string

const (
	EventTentative EventStatus = "TENTATIVE"
	EventConfirmed EventStatus = "CONFIRMED"
	EventCancelled EventStatus = "CANCELLED"
)

// Valid reports whether the value is empty or one of the declared constants.
func (s EventStatus) Valid() bool {
	switch s {
	case "", EventTentative, EventConfirmed, EventCancelled:
		return true
	}
	return false
}

// TodoStatus is the STATUS of a VTODO.
type TodoStatus string

const (
	TodoNeedsAction TodoStatus = "NEEDS-ACTION"
	TodoCompleted   TodoStatus = "COMPLETED"
	TodoInProcess   TodoStatus = "IN-PROCESS"
	TodoCancelled   TodoStatus = "CANCELLED"
)

// Valid reports whether the value is empty or one of the declared constants.
func (s TodoStatus) Valid() bool {
	switch s {
	case "", TodoNeedsAction, TodoCompleted, TodoInProcess, TodoCancelled:
		return true
	}
	return false
}

// JournalStatus is the STATUS of a VJOURNAL.
type JournalStatus string

const (
	JournalDraft     JournalStatus = "DRAFT"
	JournalFinal     JournalStatus = "FINAL"
	JournalCancelled JournalStatus = "CANCELLED"
)

// Valid reports whether the value is empty or one of the declared constants.
func (s JournalStatus) Valid() bool {
	switch s {
	case "", JournalDraft, JournalFinal, JournalCancelled:
		return true
	}
	return false
}

// Class is the CLASS access classification of a component.
type Class string

const (
	ClassPublic       Class = "PUBLIC"
	ClassPrivate      Class = "PRIVATE"
	ClassConfidential Class = "CONFIDENTIAL"
)

// Valid reports whether the value is empty or one of the declared constants.
func (c Class) Valid() bool {
	switch c {
	case "", ClassPublic, ClassPrivate, ClassConfidential:
		return true
	}
	return false
}

// Transp is the TRANSP of a VEVENT: whether it blocks busy time.
type Transp string

const (
	TranspOpaque      Transp = "OPAQUE"
	TranspTransparent Transp = "TRANSPARENT"
)

// Valid reports whether the value is empty or one of the declared constants.
func (t Transp) Valid() bool {
	switch t {
	case "", TranspOpaque, TranspTransparent:
		return true
	}
	return false
}

// Role is the ROLE parameter of an attendee.
type Role string

const (
	RoleChair          Role = "CHAIR"
	RoleRequired       Role = "REQ-PARTICIPANT"
	RoleOptional       Role = "OPT-PARTICIPANT"
	RoleNonParticipant Role = "NON-PARTICIPANT"
)

// Valid reports whether the value is empty or one of the declared constants.
func (r Role) Valid() bool {
	switch r {
	case "", RoleChair, RoleRequired, RoleOptional, RoleNonParticipant:
		return true
	}
	return false
}

// PartStat is the PARTSTAT parameter of an attendee.
type PartStat string

const (
	PartStatNeedsAction PartStat = "NEEDS-ACTION"
	PartStatAccepted    PartStat = "ACCEPTED"
	PartStatDeclined    PartStat = "DECLINED"
	PartStatTentative   PartStat = "TENTATIVE"
	PartStatDelegated   PartStat = "DELEGATED"
)

// Valid reports whether the value is empty or one of the declared constants.
func (p PartStat) Valid() bool {
	switch p {
	case "", PartStatNeedsAction, PartStatAccepted, PartStatDeclined, PartStatTentative, PartStatDelegated:
		return true
	}
	return false
}

// CalScale is the CALSCALE of a calendar. Only GREGORIAN is defined.
type CalScale string

const CalScaleGregorian CalScale = "GREGORIAN"

// Valid reports whether the value is empty or one of the declared constants.
func (c CalScale) Valid() bool {
	return c == "" || c == CalScaleGregorian
}

// Method is the iTIP method of a calendar object (RFC 5546).
type Method string

const (
	MethodPublish        Method = "PUBLISH"
	MethodRequest        Method = "REQUEST"
	MethodReply          Method = "REPLY"
	MethodAdd            Method = "ADD"
	MethodCancel         Method = "CANCEL"
	MethodRefresh        Method = "REFRESH"
	MethodCounter        Method = "COUNTER"
	MethodDeclineCounter Method = "DECLINECOUNTER"
)

// Valid reports whether the value is empty or one of the declared constants.
func (m Method) Valid() bool {
	switch m {
	case "", MethodPublish, MethodRequest, MethodReply, MethodAdd,
		MethodCancel, MethodRefresh, MethodCounter, MethodDeclineCounter:
		return true
	}
	return false
}

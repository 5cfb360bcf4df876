package constants

const (
	MsgBundledSiteImmutable = "Bundled sites cannot be edited or deleted, only archived"
	MsgScheduleConflict     = "This time slot conflicts with an existing visit"
	MsgOutsideGeofence      = "You are too far from the site to check in"
	MsgAlreadyCheckedIn     = "Already checked in to this visit"
	MsgNotCheckedIn         = "Cannot check out of a visit that was never checked into"
	MsgFormNotReady         = "Form must be completed with inverter serial and site photo before sync"
	MsgStoreOpenFailed      = "Local store could not be opened"
)

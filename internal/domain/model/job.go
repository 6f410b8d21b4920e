package model

// DayJob asks a worker to plan a single date of a multi-day search.
type DayJob struct {
	ID      string
	Date    Date
	Request Request
	Reply   chan<- DayOutcome
}

// DayOutcome is a worker's answer to a DayJob.
type DayOutcome struct {
	JobID  string
	Date   Date
	Result Result
	Err    error
}

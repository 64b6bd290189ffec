package model

import "strings"

// QAState is the quality assessment of a data frame.
type QAState string

const (
	QANone      QAState = "NONE"
	QAUndefined QAState = "UNDEFINED"
	QAFail      QAState = "FAIL"
	QAUsable    QAState = "USABLE"
	QAPass      QAState = "PASS"
)

// ObsClass is the observation class of a step or atom.
type ObsClass string

const (
	ClassNone       ObsClass = "NONE"
	ClassScience    ObsClass = "SCIENCE"
	ClassProgCal    ObsClass = "PROGCAL"
	ClassPartnerCal ObsClass = "PARTNERCAL"
	ClassAcq        ObsClass = "ACQ"
	ClassAcqCal     ObsClass = "ACQCAL"
	ClassDayCal     ObsClass = "DAYCAL"
)

// QAPrecedence is scanned in order when resolving the QA state of an atom.
// The first state present wins.
var QAPrecedence = []QAState{QANone, QAUndefined, QAFail, QAUsable, QAPass}

// ClassPrecedence is scanned in order when resolving the class of an atom.
// The first class present wins.
var ClassPrecedence = []ObsClass{ClassScience, ClassProgCal, ClassPartnerCal, ClassAcq, ClassAcqCal, ClassDayCal}

// ParseQAState normalizes a QA string. Unknown values degrade to QANone.
func ParseQAState(v string) QAState {
	s := QAState(strings.ToUpper(strings.TrimSpace(v)))
	for _, q := range QAPrecedence {
		if q == s {
			return s
		}
	}
	return QANone
}

// ParseObsClass upper-cases a class string. The result may be outside
// ClassPrecedence, in which case it never wins resolution.
func ParseObsClass(v string) ObsClass {
	return ObsClass(strings.ToUpper(strings.TrimSpace(v)))
}

// Partner reports whether time spent in this class is charged to the partner.
func (c ObsClass) Partner() bool { return strings.Contains(string(c), string(ClassPartnerCal)) }

// ResolveQAState returns the first entry of QAPrecedence found in states,
// or QANone when nothing matches.
func ResolveQAState(states []QAState) QAState {
	for _, q := range QAPrecedence {
		for _, s := range states {
			if s == q {
				return q
			}
		}
	}
	return QANone
}

// ResolveObsClass returns the first entry of ClassPrecedence found in
// classes, or ClassNone when nothing matches.
func ResolveObsClass(classes []ObsClass) ObsClass {
	for _, c := range ClassPrecedence {
		for _, s := range classes {
			if s == c {
				return c
			}
		}
	}
	return ClassNone
}

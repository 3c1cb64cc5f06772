// Package compat decides whether a primary and secondary volume can be
// paired. Every check produces Outcomes; the caller prints them and stops
// on the first Fatal one.
package compat

import (
	"fmt"

	"github.com/rileyhilliard/georep/internal/capacity"
)

// BufferSize is reserved on top of the primary's used space when comparing
// available space, so a primary that grows during the initial sync still fits.
const BufferSize int64 = 100 * 1024 * 1024

// Status is the severity of an Outcome.
type Status int

const (
	OK Status = iota
	Warning
	Fatal
)

func (s Status) String() string {
	switch s {
	case OK:
		return "ok"
	case Warning:
		return "warning"
	case Fatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// Check names the rule an Outcome came from.
type Check string

const (
	CheckVersion           Check = "version"
	CheckPrimarySnapshot   Check = "primary-size"
	CheckSecondarySnapshot Check = "secondary-size"
	CheckEmpty             Check = "secondary-empty"
	CheckTotalSize         Check = "total-size"
	CheckAvailableSize     Check = "available-size"
	CheckCapacity          Check = "capacity"
)

// Outcome is the result of one check.
type Outcome struct {
	Check   Check
	Status  Status
	Message string
}

// FirstFatal returns the first Fatal outcome, if any.
func FirstFatal(outcomes []Outcome) (Outcome, bool) {
	for _, o := range outcomes {
		if o.Status == Fatal {
			return o, true
		}
	}
	return Outcome{}, false
}

// failure is Fatal, or Warning when force is set.
func failure(check Check, force bool, msg string) Outcome {
	status := Fatal
	if force {
		status = Warning
	}
	return Outcome{Check: check, Status: status, Message: msg}
}

// Versions compares the two cluster versions for exact equality.
// A mismatch is Fatal regardless of force.
func Versions(primary, secondary string) Outcome {
	if primary == secondary {
		return Outcome{
			Check:   CheckVersion,
			Status:  OK,
			Message: fmt.Sprintf("Primary Volume and Secondary Volume are compatible (Version: %s)", primary),
		}
	}
	return Outcome{
		Check:   CheckVersion,
		Status:  Fatal,
		Message: fmt.Sprintf("Primary Volume(%s) and Secondary Volume(%s) versions not Compatible", primary, secondary),
	}
}

// CapacityOptions tunes Capacity.
type CapacityOptions struct {
	Force bool
	// Buffer overrides BufferSize when positive.
	Buffer int64
}

// Capacity compares two snapshots. A nil snapshot means the size could
// not be read. The returned list holds one entry per failed rule, or a
// single OK outcome when every rule passed. Without force, evaluation stops
// at the first failure.
func Capacity(primary, secondary *capacity.Snapshot, opts CapacityOptions) []Outcome {
	buffer := opts.Buffer
	if buffer <= 0 {
		buffer = BufferSize
	}

	var out []Outcome
	add := func(o Outcome) bool {
		out = append(out, o)
		return o.Status != Fatal
	}

	if primary == nil {
		if !add(failure(CheckPrimarySnapshot, opts.Force, "Unable to get Disk size and Used size of Primary Volume")) {
			return out
		}
	}
	if secondary == nil {
		if !add(failure(CheckSecondarySnapshot, opts.Force, "Unable to get Disk size and Used size of Secondary Volume")) {
			return out
		}
	}
	if primary == nil || secondary == nil {
		// Nothing left to compare.
		return out
	}

	if !secondary.Empty {
		var msg string
		if opts.Force {
			msg = fmt.Sprintf("%s::%s is not empty.", secondary.Host, secondary.Volume)
		} else {
			msg = fmt.Sprintf("%[1]s::%[2]s is not empty. Please delete existing files in %[1]s::%[2]s and retry, "+
				"or use --force to continue without deleting the existing files.", secondary.Host, secondary.Volume)
		}
		if !add(failure(CheckEmpty, opts.Force, msg)) {
			return out
		}
	}

	pTotal, pUsed := int64(primary.Total), int64(primary.Used)
	sTotal, sUsed := int64(secondary.Total), int64(secondary.Used)

	if sTotal < pTotal {
		msg := fmt.Sprintf("Total disk size of primary(%s) is greater than disk size of secondary(%s)",
			HumanReadableSize(pTotal), HumanReadableSize(sTotal))
		if !add(failure(CheckTotalSize, opts.Force, msg)) {
			return out
		}
	}

	secondaryAvailable := sTotal - sUsed
	primaryAvailable := pTotal - (pUsed + buffer)
	if secondaryAvailable < primaryAvailable {
		msg := fmt.Sprintf("Total available size of primary(%s) is greater than available size of secondary(%s)",
			HumanReadableSize(primaryAvailable), HumanReadableSize(secondaryAvailable))
		if !add(failure(CheckAvailableSize, opts.Force, msg)) {
			return out
		}
	}

	if len(out) == 0 {
		out = append(out, Outcome{
			Check:   CheckCapacity,
			Status:  OK,
			Message: fmt.Sprintf("Secondary Volume %s::%s has enough space (%s total, %s available)",
				secondary.Host, secondary.Volume, HumanReadableSize(sTotal), HumanReadableSize(secondaryAvailable)),
		})
	}
	return out
}

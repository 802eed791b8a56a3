package system

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/julianstephens/salonlux/internal/cli"
	"github.com/julianstephens/salonlux/internal/constants"
	"github.com/julianstephens/salonlux/internal/lock"
	"github.com/julianstephens/salonlux/internal/models"
	"github.com/julianstephens/salonlux/internal/scheduler"
	"github.com/julianstephens/salonlux/internal/storage"
)

// DoctorCmd reports configuration, storage and data problems without
// changing anything.
type DoctorCmd struct{}

type checkResult int

const (
	checkOK checkResult = iota
	checkWarn
	checkFail
	checkSkipped
)

type doctor struct {
	out      io.Writer
	hasError bool
}

func (d *doctor) report(name string, result checkResult, detail string) {
	switch result {
	case checkOK:
		fmt.Fprintf(d.out, "✓ %s: OK\n", name)
	case checkWarn:
		fmt.Fprintf(d.out, "⚠ %s: WARNING\n", name)
	case checkFail:
		fmt.Fprintf(d.out, "❌ %s: FAIL\n", name)
		d.hasError = true
	case checkSkipped:
		fmt.Fprintf(d.out, "⊘ %s: SKIPPED\n", name)
	}
	if detail != "" {
		for _, line := range strings.Split(detail, "\n") {
			fmt.Fprintf(d.out, "   %s\n", line)
		}
	}
}

func (d *doctor) check(name string, err error) bool {
	if err != nil {
		d.report(name, checkFail, "Error: "+err.Error())
		return false
	}
	d.report(name, checkOK, "")
	return true
}

func (cmd *DoctorCmd) Run(ctx *cli.Context) error {
	d := &doctor{out: ctx.Stdout()}
	fmt.Fprintln(d.out, "Running diagnostics...")
	fmt.Fprintln(d.out)

	d.check("Configuration", ctx.Config.Validate())

	bg, cancel := context.WithTimeout(context.Background(), constants.BackendTimeout)
	defer cancel()
	backend := ctx.Store.Backend()

	reachable := d.check("Backend reachable ("+string(ctx.Config.Backend)+")", backend.Ping(bg))

	var appts []models.Appointment
	snapshotOK := false
	if reachable {
		appts, snapshotOK = checkSnapshot(bg, d, backend, ctx.Store.Key())
	} else {
		d.report("Snapshot readable", checkSkipped, "backend not reachable")
	}

	if snapshotOK {
		issues := inspectAppointments(appts, ctx.Scheduler)
		d.report("Appointment integrity", issues.result(), issues.String())
	} else {
		d.report("Appointment integrity", checkSkipped, "no readable snapshot")
	}

	checkLock(d, ctx.DataDir())
	checkBackups(d, ctx)
	d.check("Clock", checkClock(ctx.Clock()))

	fmt.Fprintln(d.out)
	if d.hasError {
		fmt.Fprintln(d.out, "Diagnostics completed with errors.")
		return errors.New("one or more health checks failed")
	}
	fmt.Fprintln(d.out, "All diagnostics passed!")
	return nil
}

func checkSnapshot(ctx context.Context, d *doctor, backend storage.Backend, key string) ([]models.Appointment, bool) {
	data, err := backend.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		d.report("Snapshot readable", checkWarn, "no appointments stored yet - run 'salonlux init'")
		return nil, true
	}
	if err != nil {
		d.report("Snapshot readable", checkFail, "Error: "+err.Error())
		return nil, false
	}
	appts, err := storage.DecodeSnapshot(data)
	if err != nil {
		d.report("Snapshot readable", checkFail, "Error: "+err.Error()+"\nThe booking store will start empty; restore a backup to recover.")
		return nil, false
	}
	d.report("Snapshot readable", checkOK, fmt.Sprintf("%d appointment(s) at %s", len(appts), backend.Location()))
	return appts, true
}

// integrityIssues lists problems found in a stored appointment collection.
// Orphan time labels never mark a slot occupied, so they are only warnings.
type integrityIssues struct {
	orphanTimes    []string
	invalidDates   []string
	duplicateSlots []string
	duplicateIDs   []string
}

func inspectAppointments(appts []models.Appointment, sched *scheduler.Scheduler) integrityIssues {
	var issues integrityIssues
	seenIDs := make(map[string]bool)
	seenSlots := make(map[string]bool)

	for _, apt := range appts {
		if seenIDs[apt.ID] {
			issues.duplicateIDs = append(issues.duplicateIDs, apt.ID)
		}
		seenIDs[apt.ID] = true

		if seenSlots[apt.SlotKey()] {
			issues.duplicateSlots = append(issues.duplicateSlots, apt.Date+" "+apt.Time)
		}
		seenSlots[apt.SlotKey()] = true

		if _, err := models.ParseDate(apt.Date); err != nil {
			issues.invalidDates = append(issues.invalidDates, fmt.Sprintf("%s (%q)", apt.ID, apt.Date))
		}
		if !sched.IsSlot(apt.Time) {
			issues.orphanTimes = append(issues.orphanTimes, fmt.Sprintf("%s (%q)", apt.ID, apt.Time))
		}
	}

	sort.Strings(issues.duplicateIDs)
	sort.Strings(issues.duplicateSlots)
	return issues
}

func (i integrityIssues) result() checkResult {
	switch {
	case len(i.duplicateIDs) > 0 || len(i.duplicateSlots) > 0 || len(i.invalidDates) > 0:
		return checkFail
	case len(i.orphanTimes) > 0:
		return checkWarn
	default:
		return checkOK
	}
}

func (i integrityIssues) String() string {
	var lines []string
	add := func(label string, items []string) {
		if len(items) > 0 {
			lines = append(lines, fmt.Sprintf("%s: %s", label, strings.Join(items, ", ")))
		}
	}
	add("duplicate ids", i.duplicateIDs)
	add("double-booked slots", i.duplicateSlots)
	add("invalid dates", i.invalidDates)
	add("times outside opening hours", i.orphanTimes)
	return strings.Join(lines, "\n")
}

func checkLock(d *doctor, dir string) {
	status, err := lock.Inspect(dir)
	switch {
	case err != nil:
		d.report("Lock file", checkWarn, err.Error())
	case !status.Present:
		d.report("Lock file", checkOK, "")
	case status.Malformed:
		d.report("Lock file", checkWarn, "unreadable lock file at "+status.Path+" will be replaced on next write")
	case status.Live:
		d.report("Lock file", checkOK, fmt.Sprintf("held by PID %d (%s) since %s",
			status.Holder.PID, status.Holder.Executable, status.Holder.Since.Format(time.RFC3339)))
	default:
		d.report("Lock file", checkWarn, fmt.Sprintf("stale lock from PID %d will be replaced on next write", status.Holder.PID))
	}
}

func checkBackups(d *doctor, ctx *cli.Context) {
	backups, err := ctx.BackupManager().ListBackups()
	switch {
	case err != nil:
		d.report("Backups present", checkWarn, "failed to list backups: "+err.Error())
	case len(backups) == 0:
		d.report("Backups present", checkWarn, "no backups found - consider creating one with 'salonlux backup create'")
	default:
		d.report("Backups present", checkOK, fmt.Sprintf("%d backup(s), newest %s", len(backups), backups[0].Timestamp.Format("2006-01-02 15:04")))
	}
}

func checkClock(now time.Time) error {
	if now.Year() < 2020 || now.Year() > 2100 {
		return errors.Newf("system time appears incorrect: %s", now.Format(time.RFC3339))
	}
	return nil
}

// File: internal/portal/udise/student_import.go
package udise

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/autoedu/autoedu-cli/api/schemas"
)

// lookup verdicts the portal can render after the PEN + DOB search.
type verdict int

const (
	verdictNone verdict = iota
	verdictDOBMismatch
	verdictImportable
	verdictHeldElsewhere
)

// ImportStudent runs the import workflow for one student record. The
// record must carry the student's PEN and date of birth; records that
// cannot be attempted at all are skipped rather than failed so they
// stand out in the report as data problems, not portal problems.
func (p *Portal) ImportStudent(ctx context.Context, sess schemas.SessionContext, rec schemas.Record) (schemas.RecordStatus, error) {
	pen := strings.TrimSpace(rec.Field("pen"))
	dob := strings.TrimSpace(rec.Field("dob"))

	if pen == "" {
		return schemas.Skipped("missing PEN"), nil
	}
	if dob == "" {
		return schemas.Skipped("missing date of birth"), nil
	}
	if class := strings.TrimSpace(rec.Field("class")); class != "" && p.cfg.Class != "" && class != p.cfg.Class {
		return schemas.Skipped(fmt.Sprintf("class mismatch: record is for class %s, importing into class %s", class, p.cfg.Class)), nil
	}

	if err := p.ensureImportMenu(ctx); err != nil {
		return schemas.RecordStatus{}, err
	}

	p.logger.Info("Looking up student",
		zap.String("pen", pen),
		zap.String("dob", dob))

	if err := p.fill(ctx, locStudentPEN, pen); err != nil {
		return schemas.RecordStatus{}, err
	}
	if err := p.fill(ctx, locStudentDOB, dob); err != nil {
		return schemas.RecordStatus{}, err
	}
	if err := p.click(ctx, locImportGo); err != nil {
		return schemas.RecordStatus{}, err
	}

	v, msg, err := p.lookupVerdict(ctx, sess)
	if err != nil {
		return schemas.RecordStatus{}, err
	}
	switch v {
	case verdictDOBMismatch:
		// Dismiss the dialog so the next record starts from a clean form.
		if err := p.click(ctx, locDOBMismatchOK); err != nil {
			return schemas.RecordStatus{}, err
		}
		return schemas.Failed("date of birth mismatch: " + msg), nil
	case verdictHeldElsewhere:
		return schemas.Failed("student is still active in another school; a release request must be generated first"), nil
	case verdictNone:
		return schemas.Failed("portal rendered no verdict for the lookup"), nil
	}

	if school, ok := p.probeText(ctx, sess, locCurrentSchool); ok {
		p.logger.Debug("Student's current school", zap.String("school", strings.TrimSpace(school)))
	}

	return p.admitStudent(ctx, sess, rec)
}

// admitStudent fills and submits the admission form for a student the
// portal marked importable.
func (p *Portal) admitStudent(ctx context.Context, sess schemas.SessionContext, rec schemas.Record) (schemas.RecordStatus, error) {
	class := strings.TrimSpace(rec.Field("class"))
	if class == "" {
		class = p.cfg.Class
	}
	section := strings.TrimSpace(rec.Field("section"))
	if section == "" {
		section = p.cfg.Section
	}

	for _, sel := range []struct {
		loc   schemas.Locator
		value string
	}{
		{locSelectClass, class},
		{locSelectSection, section},
	} {
		if sel.value == "" {
			continue
		}
		h, err := p.res.Find(ctx, sel.loc)
		if err != nil {
			return schemas.RecordStatus{}, err
		}
		if err := sess.SelectOption(ctx, h, sel.value); err != nil {
			return schemas.RecordStatus{}, err
		}
	}

	if doa := strings.TrimSpace(rec.Field("doa")); doa != "" {
		if err := p.fill(ctx, locDOA, doa); err != nil {
			return schemas.RecordStatus{}, err
		}
	}

	if err := p.click(ctx, locImportSubmit); err != nil {
		return schemas.RecordStatus{}, err
	}
	if err := p.click(ctx, locImportConfirm); err != nil {
		return schemas.RecordStatus{}, err
	}

	msg, ok := p.probeText(ctx, sess, locImportSuccess)
	if !ok {
		return schemas.Failed("import submitted but no confirmation appeared"), nil
	}
	p.logger.Info("Student imported", zap.String("record_id", rec.ID()), zap.String("message", msg))

	if err := p.click(ctx, locImportOK); err != nil {
		return schemas.RecordStatus{}, err
	}
	return schemas.Success(), nil
}

// ensureImportMenu walks the navigation path to the in-state import
// form. The menu survives across records, so this runs once per
// session.
func (p *Portal) ensureImportMenu(ctx context.Context) error {
	if p.menuReady {
		return nil
	}

	for _, step := range []struct {
		name string
		loc  schemas.Locator
	}{
		{"Student Movement and Progression", locMovementProgression},
		{"Import Module", locImportModule},
		{"Import Within State", locImportWithinState},
	} {
		if err := p.click(ctx, step.loc); err != nil {
			return err
		}
		p.logger.Info("Selected menu option", zap.String("option", step.name))
	}

	p.menuReady = true
	return nil
}

// lookupVerdict waits for whichever of the three verdict elements the
// portal renders first after a lookup, returning the dialog text for a
// DOB mismatch.
func (p *Portal) lookupVerdict(ctx context.Context, sess schemas.SessionContext) (verdict, string, error) {
	deadline := time.Now().Add(p.verdictWait)
	for {
		if err := ctx.Err(); err != nil {
			return verdictNone, "", err
		}

		if msg, ok := p.probeText(ctx, sess, locDOBMismatch); ok {
			return verdictDOBMismatch, strings.TrimSpace(msg), nil
		}
		if _, ok := p.probe(ctx, sess, locStatusImportable); ok {
			return verdictImportable, "", nil
		}
		if _, ok := p.probe(ctx, sess, locStatusHeldElsewhere); ok {
			return verdictHeldElsewhere, "", nil
		}

		if time.Now().After(deadline) {
			return verdictNone, "", nil
		}

		// Probes can fail faster than their ceiling; keep the rounds
		// paced either way.
		select {
		case <-ctx.Done():
			return verdictNone, "", ctx.Err()
		case <-time.After(p.verdictPoll):
		}
	}
}

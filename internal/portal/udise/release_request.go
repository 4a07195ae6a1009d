// File: internal/portal/udise/release_request.go
package udise

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/autoedu/autoedu-cli/api/schemas"
)

// GenerateReleaseRequest asks the school currently holding a student to
// release them, the required follow-up when an import lookup found the
// student active elsewhere. The portal rejects requests for students
// parked in its dropbox; those records fail with the portal's own
// message.
func (p *Portal) GenerateReleaseRequest(ctx context.Context, sess schemas.SessionContext, rec schemas.Record) (schemas.RecordStatus, error) {
	pen := strings.TrimSpace(rec.Field("pen"))
	dob := strings.TrimSpace(rec.Field("dob"))

	if pen == "" {
		return schemas.Skipped("missing PEN"), nil
	}
	if dob == "" {
		return schemas.Skipped("missing date of birth"), nil
	}

	if err := p.ensureReleaseMenu(ctx); err != nil {
		return schemas.RecordStatus{}, err
	}

	p.logger.Info("Generating release request",
		zap.String("pen", pen),
		zap.String("dob", dob))

	if err := p.fill(ctx, locReleasePEN, pen); err != nil {
		return schemas.RecordStatus{}, err
	}
	if err := p.fill(ctx, locReleaseDOB, dob); err != nil {
		return schemas.RecordStatus{}, err
	}
	if err := p.click(ctx, locReleaseGetDetails); err != nil {
		return schemas.RecordStatus{}, err
	}

	// The portal either loads the student's details or raises an error
	// dialog, typically for students parked in the dropbox.
	name, ok := p.probeText(ctx, sess, locReleaseStudentName)
	if !ok {
		if msg, ok := p.probeText(ctx, sess, locReleaseError); ok {
			if err := p.click(ctx, locReleaseOK); err != nil {
				return schemas.RecordStatus{}, err
			}
			return schemas.Failed("release request rejected: " + strings.TrimSpace(msg)), nil
		}
		return schemas.Failed("portal showed neither student details nor an error"), nil
	}
	p.logger.Debug("Student details loaded", zap.String("name", strings.TrimSpace(name)))

	return p.submitReleaseRequest(ctx, sess, rec)
}

// submitReleaseRequest fills the admission side of the form and submits
// the request once the student's details are on screen.
func (p *Portal) submitReleaseRequest(ctx context.Context, sess schemas.SessionContext, rec schemas.Record) (schemas.RecordStatus, error) {
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
		{locReleaseClass, class},
		{locReleaseSection, section},
		{locReleaseRemark, strings.TrimSpace(rec.Field("remark"))},
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
		if err := p.fill(ctx, locReleaseDOA, doa); err != nil {
			return schemas.RecordStatus{}, err
		}
	}

	if err := p.click(ctx, locReleaseSubmit); err != nil {
		return schemas.RecordStatus{}, err
	}

	msg, ok := p.probeText(ctx, sess, locReleaseStatus)
	if !ok {
		return schemas.Failed("request submitted but no confirmation appeared"), nil
	}
	p.logger.Info("Release request generated",
		zap.String("record_id", rec.ID()),
		zap.String("message", strings.TrimSpace(msg)))

	if err := p.click(ctx, locReleaseOK); err != nil {
		return schemas.RecordStatus{}, err
	}
	return schemas.Success(), nil
}

// ensureReleaseMenu walks the navigation path to the in-state release
// request form. Runs once per session, like the import menu.
func (p *Portal) ensureReleaseMenu(ctx context.Context) error {
	if p.releaseMenuReady {
		return nil
	}

	for _, step := range []struct {
		name string
		loc  schemas.Locator
	}{
		{"Student Release Request Management", locReleaseManagement},
		{"Release Request Within State", locReleaseWithinState},
		{"Generate Student Release Request", locReleaseGenerate},
	} {
		if err := p.click(ctx, step.loc); err != nil {
			return err
		}
		p.logger.Info("Selected menu option", zap.String("option", step.name))
	}

	p.releaseMenuReady = true
	return nil
}

// File: internal/portal/udise/section_shift.go
package udise

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/autoedu/autoedu-cli/api/schemas"
)

// shiftPageSize is how many students the portal renders per table page.
const shiftPageSize = 10

// ShiftSection moves one student into the section their record names.
// The portal lists the class's students in a paged table, so the
// routine pages through it until the student's row turns up. A student
// already sitting in the right section succeeds without touching the
// form.
func (p *Portal) ShiftSection(ctx context.Context, sess schemas.SessionContext, rec schemas.Record) (schemas.RecordStatus, error) {
	pen := strings.TrimSpace(rec.Field("pen"))
	section := strings.TrimSpace(rec.Field("section"))

	if pen == "" {
		return schemas.Skipped("missing PEN"), nil
	}
	if section == "" {
		return schemas.Skipped("missing target section"), nil
	}
	if class := strings.TrimSpace(rec.Field("class")); class != "" && p.cfg.Class != "" && class != p.cfg.Class {
		return schemas.Skipped(fmt.Sprintf("class mismatch: record is for class %s, shifting within class %s", class, p.cfg.Class)), nil
	}

	if err := p.ensureSectionShiftMenu(ctx, sess); err != nil {
		return schemas.RecordStatus{}, err
	}
	if p.shiftPages == 0 {
		return schemas.Failed("no students listed for the selected class"), nil
	}

	current, found, err := p.findShiftRow(ctx, sess, pen)
	if err != nil {
		return schemas.RecordStatus{}, err
	}
	if !found {
		return schemas.Failed("student not listed in the section shift table"), nil
	}
	if current == section {
		return schemas.RecordStatus{
			Code:   schemas.StatusSuccess,
			Reason: "section already matches",
		}, nil
	}

	p.logger.Info("Shifting section",
		zap.String("pen", pen),
		zap.String("from", current),
		zap.String("to", section))

	if err := p.click(ctx, locShiftRowEdit(pen)); err != nil {
		return schemas.RecordStatus{}, err
	}
	h, err := p.res.Find(ctx, locShiftNewSection)
	if err != nil {
		return schemas.RecordStatus{}, err
	}
	if err := sess.SelectOption(ctx, h, section); err != nil {
		return schemas.RecordStatus{}, err
	}
	if err := p.click(ctx, locShiftConfirm); err != nil {
		return schemas.RecordStatus{}, err
	}

	msg, ok := p.probeText(ctx, sess, locShiftMessage)
	if !ok {
		return schemas.Failed("shift submitted but no confirmation appeared"), nil
	}
	if err := p.click(ctx, locShiftOK); err != nil {
		return schemas.RecordStatus{}, err
	}

	msg = strings.TrimSpace(msg)
	if !strings.Contains(msg, "Successfully") {
		return schemas.Failed("section shift rejected: " + msg), nil
	}
	return schemas.Success(), nil
}

// ensureSectionShiftMenu opens the Class / Section Shift page, filters
// it to the configured class and reads the table's page count. Runs
// once per session; records after the first reuse the loaded table.
func (p *Portal) ensureSectionShiftMenu(ctx context.Context, sess schemas.SessionContext) error {
	if p.shiftMenuReady {
		return nil
	}

	if err := p.click(ctx, locSectionShift); err != nil {
		return err
	}
	p.logger.Info("Selected menu option", zap.String("option", "Class / Section Shift"))

	if p.cfg.Class != "" {
		h, err := p.res.Find(ctx, locShiftSelectClass)
		if err != nil {
			return err
		}
		if err := sess.SelectOption(ctx, h, p.cfg.Class); err != nil {
			return err
		}
		p.logger.Info("Selected class", zap.String("class", p.cfg.Class))
	}
	if err := p.click(ctx, locShiftGo); err != nil {
		return err
	}

	p.shiftPages = 1
	if text, ok := p.probeText(ctx, sess, locShiftCount); ok {
		pages, err := totalPages(text)
		if err != nil {
			p.logger.Warn("Unreadable student count", zap.String("text", text), zap.Error(err))
		} else {
			p.shiftPages = pages
		}
	}
	p.logger.Info("Section shift table loaded", zap.Int("pages", p.shiftPages))

	p.shiftMenuReady = true
	return nil
}

// findShiftRow pages through the table looking for the student's row
// and reports their current section.
func (p *Portal) findShiftRow(ctx context.Context, sess schemas.SessionContext, pen string) (string, bool, error) {
	for page := 1; ; page++ {
		if current, ok := p.probeText(ctx, sess, locShiftRowSection(pen)); ok {
			return strings.TrimSpace(current), true, nil
		}
		if page >= p.shiftPages {
			return "", false, nil
		}
		if err := p.click(ctx, locShiftNextPage); err != nil {
			return "", false, err
		}
	}
}

// totalPages derives the page count from the table's count caption, for
// example "Total Students: 43".
func totalPages(countText string) (int, error) {
	fields := strings.Fields(countText)
	if len(fields) == 0 {
		return 0, fmt.Errorf("empty student count")
	}
	count, err := strconv.Atoi(fields[len(fields)-1])
	if err != nil {
		return 0, fmt.Errorf("student count %q is not a number", fields[len(fields)-1])
	}
	return (count + shiftPageSize - 1) / shiftPageSize, nil
}

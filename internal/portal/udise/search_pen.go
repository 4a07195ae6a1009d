// File: internal/portal/udise/search_pen.go
package udise

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/autoedu/autoedu-cli/api/schemas"
)

// SearchPEN recovers a student's PEN through the portal's Get PEN & DOB
// dialog using the Aadhaar number and year of birth. A found PEN is
// reported in the record's status reason so the operator can fold it
// back into the input file.
func (p *Portal) SearchPEN(ctx context.Context, sess schemas.SessionContext, rec schemas.Record) (schemas.RecordStatus, error) {
	aadhaar := strings.TrimSpace(rec.Field("aadhaar"))
	if aadhaar == "" {
		return schemas.Skipped("missing Aadhaar number"), nil
	}

	yob := strings.TrimSpace(rec.Field("yob"))
	if yob == "" {
		yob = yearOfBirth(rec.Field("dob"))
	}
	if yob == "" {
		return schemas.Skipped("missing year of birth"), nil
	}

	p.logger.Info("Searching PEN",
		zap.String("record_id", rec.ID()),
		zap.String("yob", yob))

	if err := p.click(ctx, locSearchOpen); err != nil {
		return schemas.RecordStatus{}, err
	}
	if err := p.fill(ctx, locAadhaarNo, aadhaar); err != nil {
		return schemas.RecordStatus{}, err
	}
	if err := p.fill(ctx, locYearOfBirth, yob); err != nil {
		return schemas.RecordStatus{}, err
	}
	if err := p.click(ctx, locSearchSubmit); err != nil {
		return schemas.RecordStatus{}, err
	}

	status, err := p.readSearchResult(ctx, sess)
	if err != nil {
		return schemas.RecordStatus{}, err
	}

	if err := p.click(ctx, locSearchClose); err != nil {
		return schemas.RecordStatus{}, err
	}
	return status, nil
}

func (p *Portal) readSearchResult(ctx context.Context, sess schemas.SessionContext) (schemas.RecordStatus, error) {
	if pen, ok := p.probeText(ctx, sess, locSearchPEN); ok {
		dob, _ := p.probeText(ctx, sess, locSearchDOB)
		pen, dob = strings.TrimSpace(pen), strings.TrimSpace(dob)
		p.logger.Info("PEN found", zap.String("pen", pen), zap.String("dob", dob))
		return schemas.RecordStatus{
			Code:   schemas.StatusSuccess,
			Reason: fmt.Sprintf("found PEN %s (DOB %s)", pen, dob),
		}, nil
	}

	msg, ok := p.probeText(ctx, sess, locSearchError)
	if !ok {
		return schemas.Failed("search produced neither a PEN nor an error"), nil
	}
	if err := p.click(ctx, locSearchErrorOK); err != nil {
		return schemas.RecordStatus{}, err
	}
	return schemas.Failed("search failed: " + strings.TrimSpace(msg)), nil
}

// yearOfBirth extracts the year from a DD/MM/YYYY date of birth.
func yearOfBirth(dob string) string {
	parts := strings.Split(strings.TrimSpace(dob), "/")
	if len(parts) != 3 || len(parts[2]) != 4 {
		return ""
	}
	return parts[2]
}

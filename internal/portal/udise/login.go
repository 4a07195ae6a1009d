// File: internal/portal/udise/login.go
package udise

import (
	"context"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/autoedu/autoedu-cli/api/schemas"
)

// Login signs in to the student module and returns the name of the
// logged-in school. The captcha cannot be automated, so after filling
// the credentials the flow pauses for manual entry before submitting.
// Invalid captcha and incorrect credential alerts are retried up to the
// configured attempt budget; exhausting it is a session-level failure.
func (p *Portal) Login(ctx context.Context, sess schemas.SessionContext) (string, error) {
	attempts := p.cfg.LoginAttempts
	if attempts < 1 {
		attempts = 1
	}

	p.logger.Info("Starting login to the student module",
		zap.String("session_id", sess.ID()),
		zap.Int("max_attempts", attempts))

	for attempt := 1; attempt <= attempts; attempt++ {
		p.logger.Info("Login attempt", zap.Int("attempt", attempt), zap.Int("of", attempts))

		if err := p.fill(ctx, locUsername, p.cfg.Username); err != nil {
			return "", err
		}
		if err := p.fill(ctx, locPassword, p.cfg.Password); err != nil {
			return "", err
		}

		// Focus the captcha field, then hand control to the operator.
		if err := p.click(ctx, locCaptcha); err != nil {
			return "", err
		}
		if err := p.waitForCaptcha(ctx); err != nil {
			return "", err
		}

		if err := p.click(ctx, locLoginSubmit); err != nil {
			return "", err
		}

		if msg, ok := p.probeText(ctx, sess, locLoginAlert); ok {
			switch {
			case strings.Contains(msg, "Invalid"):
				p.logger.Warn("Invalid captcha, retrying login", zap.String("alert", msg))
				continue
			case strings.Contains(msg, "Incorrect"):
				p.logger.Warn("Incorrect credentials, retrying login", zap.String("alert", msg))
				continue
			default:
				p.logger.Warn("Unrecognized login alert", zap.String("alert", msg))
			}
		}

		school, err := p.enterDashboard(ctx, sess)
		if err != nil {
			return "", err
		}
		p.logger.Info("Login successful", zap.String("school", school))
		return school, nil
	}

	return "", schemas.NewSessionError("login failed after maximum attempts", nil)
}

// waitForCaptcha pauses for manual captcha entry, honoring cancellation.
func (p *Portal) waitForCaptcha(ctx context.Context) error {
	wait := p.cfg.CaptchaWait
	if wait <= 0 {
		return nil
	}

	p.logger.Info("Waiting for manual captcha entry", zap.Duration("wait", wait))
	timer := time.NewTimer(wait)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// enterDashboard finishes the post-login sequence: pick the current
// academic year, dismiss the school information dialog, and read the
// logged-in school name, which doubles as the dashboard readiness
// signal.
func (p *Portal) enterDashboard(ctx context.Context, sess schemas.SessionContext) (string, error) {
	if err := p.click(ctx, locAcademicYear); err != nil {
		return "", err
	}
	p.logger.Debug("Selected current academic year")

	if err := p.click(ctx, locSchoolInfoClose); err != nil {
		return "", err
	}
	p.logger.Debug("Closed school information dialog")

	h, err := p.res.Find(ctx, locLoggedInSchool)
	if err != nil {
		return "", err
	}
	school, err := sess.NodeText(ctx, h)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(school), nil
}

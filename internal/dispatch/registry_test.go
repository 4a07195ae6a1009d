package dispatch

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/autoedu/autoedu-cli/api/schemas"
	"github.com/autoedu/autoedu-cli/internal/mocks"
)

type stubRecord struct{ id string }

func (r stubRecord) ID() string           { return r.id }
func (r stubRecord) Field(string) string  { return "" }

func TestRegistry(t *testing.T) {
	t.Run("dispatch invokes the registered routine", func(t *testing.T) {
		reg := NewRegistry(zap.NewNop())
		var gotRecord string
		reg.Register("student", "import", func(_ context.Context, _ schemas.SessionContext, rec schemas.Record) (schemas.RecordStatus, error) {
			gotRecord = rec.ID()
			return schemas.Success(), nil
		})
		reg.Freeze()

		status, err := reg.Dispatch(context.Background(), "student", "import", mocks.NewFakeSession(), stubRecord{id: "pen-1"})
		require.NoError(t, err)
		assert.Equal(t, schemas.StatusSuccess, status.Code)
		assert.Equal(t, "pen-1", gotRecord)
	})

	t.Run("unknown pair fails with UnknownTaskError and no routine runs", func(t *testing.T) {
		reg := NewRegistry(zap.NewNop())
		invoked := false
		reg.Register("student", "import", func(context.Context, schemas.SessionContext, schemas.Record) (schemas.RecordStatus, error) {
			invoked = true
			return schemas.Success(), nil
		})
		reg.Freeze()

		_, err := reg.Dispatch(context.Background(), "teacher", "transfer", mocks.NewFakeSession(), stubRecord{id: "x"})
		require.Error(t, err)
		assert.True(t, schemas.IsKind(err, schemas.KindUnknownTask))
		assert.False(t, invoked)
	})

	t.Run("registration after freeze panics", func(t *testing.T) {
		reg := NewRegistry(zap.NewNop())
		reg.Freeze()
		assert.Panics(t, func() {
			reg.Register("student", "import", func(context.Context, schemas.SessionContext, schemas.Record) (schemas.RecordStatus, error) {
				return schemas.Success(), nil
			})
		})
	})

	t.Run("duplicate registration panics", func(t *testing.T) {
		reg := NewRegistry(zap.NewNop())
		routine := func(context.Context, schemas.SessionContext, schemas.Record) (schemas.RecordStatus, error) {
			return schemas.Success(), nil
		}
		reg.Register("student", "import", routine)
		assert.Panics(t, func() {
			reg.Register("student", "import", routine)
		})
	})
}

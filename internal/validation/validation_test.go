package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bably/internal/models"
)

func ptr[T any](v T) *T { return &v }

func TestFeedValidation(t *testing.T) {
	v := New()

	tests := []struct {
		name       string
		feed       models.NewFeed
		wantFields []string
	}{
		{
			name: "valid bottle",
			feed: models.NewFeed{Method: "bottle", FedAt: ptr(int64(1701419220)), Amount: ptr(4.5), InfantID: 1},
		},
		{
			name: "valid nursing",
			feed: models.NewFeed{Method: "nursing", FedAt: ptr(int64(1701419220)), Duration: ptr(12), InfantID: 1},
		},
		{
			name:       "missing fed_at and duration are both reported",
			feed:       models.NewFeed{Method: "nursing", InfantID: 1},
			wantFields: []string{"fed_at", "duration"},
		},
		{
			name:       "bottle without amount",
			feed:       models.NewFeed{Method: "bottle", FedAt: ptr(int64(1)), InfantID: 1},
			wantFields: []string{"amount"},
		},
		{
			name:       "unknown method",
			feed:       models.NewFeed{Method: "spoon", FedAt: ptr(int64(1)), InfantID: 1},
			wantFields: []string{"method"},
		},
		{
			name:       "missing infant",
			feed:       models.NewFeed{Method: "bottle", FedAt: ptr(int64(1)), Amount: ptr(1.0)},
			wantFields: []string{"infant_id"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Struct(tt.feed)
			if len(tt.wantFields) == 0 {
				require.NoError(t, err)
				return
			}

			var verr *Error
			require.ErrorAs(t, err, &verr)
			assert.Len(t, verr.Fields, len(tt.wantFields))
			for _, field := range tt.wantFields {
				assert.True(t, verr.Has(field), "expected %s in %q", field, verr.Error())
				assert.Contains(t, verr.Error(), field)
			}
		})
	}
}

func TestDiaperValidation(t *testing.T) {
	v := New()

	err := v.Struct(models.NewDiaper{Type: "wet", Size: "medium", ChangedAt: ptr(int64(1)), InfantID: 2})
	require.NoError(t, err)

	err = v.Struct(models.NewDiaper{InfantID: 2})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "type is required, size is required, changed_at is required", verr.Error())

	err = v.Struct(models.NewDiaper{Type: "soggy", Size: "huge", ChangedAt: ptr(int64(1)), InfantID: 2})
	require.ErrorAs(t, err, &verr)
	assert.True(t, verr.Has("type"))
	assert.True(t, verr.Has("size"))
}

func TestTimeStamp(t *testing.T) {
	v := New()

	type window struct {
		Start string `json:"start" validate:"time_stamp"`
	}

	assert.NoError(t, v.Struct(window{Start: "07:30"}))
	assert.NoError(t, v.Struct(window{Start: "23:59"}))

	for _, bad := range []string{"24:00", "7", "07:60", "aa:bb", ""} {
		err := v.Struct(window{Start: bad})
		assert.Error(t, err, bad)
	}
}

func TestParseClock(t *testing.T) {
	mins, ok := ParseClock("21:15")
	assert.True(t, ok)
	assert.Equal(t, 21*60+15, mins)

	_, ok = ParseClock("21:15:00")
	assert.False(t, ok)
}

func TestEmail(t *testing.T) {
	v := New()

	tests := []struct {
		email   string
		wantErr bool
	}{
		{"test@example.com", false},
		{"user+tag@mail.example.com", false},
		{"testexample.com", true},
		{"test@", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.email, func(t *testing.T) {
			err := v.Email(tt.email)
			assert.Equal(t, tt.wantErr, err != nil)
		})
	}
}

func TestDate(t *testing.T) {
	v := New()

	type born struct {
		DOB string `json:"dob" validate:"required,date"`
	}

	assert.NoError(t, v.Struct(born{DOB: "2025-01-01"}))

	err := v.Struct(born{DOB: "01/01/2025"})
	var verr *Error
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "dob must be a date (YYYY-MM-DD)", verr.Error())
}

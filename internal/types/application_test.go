package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		input   string
		want    ApplicationStatus
		wantErr bool
	}{
		{input: "applied", want: StatusApplied},
		{input: "Interview", want: StatusInterview},
		{input: " OFFER ", want: StatusOffer},
		{input: "rejected", want: StatusRejected},
		{input: "", wantErr: true},
		{input: "ghosted", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseStatus(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestApplicationStatus_Label(t *testing.T) {
	labels := make([]string, 0, len(AllStatuses))
	for _, s := range AllStatuses {
		labels = append(labels, s.Label())
	}
	assert.Equal(t, []string{"Applied", "Interview", "Offer", "Rejected"}, labels)
	assert.Equal(t, "unknown", ApplicationStatus("unknown").Label())
}

func TestDraft_NormalizeAndValidate(t *testing.T) {
	tests := []struct {
		name    string
		draft   Draft
		wantErr string
	}{
		{
			name:  "minimal draft",
			draft: Draft{Company: "Acme", Position: "SWE"},
		},
		{
			name:  "explicit status in mixed case",
			draft: Draft{Company: "Acme", Position: "SWE", Status: "Offer"},
		},
		{
			name:    "whitespace company",
			draft:   Draft{Company: "   ", Position: "SWE"},
			wantErr: "Company",
		},
		{
			name:    "missing position",
			draft:   Draft{Company: "Acme"},
			wantErr: "Position",
		},
		{
			name:    "unknown status",
			draft:   Draft{Company: "Acme", Position: "SWE", Status: "ghosted"},
			wantErr: "oneof",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.draft.Normalize()
			err := tt.draft.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

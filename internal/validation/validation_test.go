package validation

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  string
	}{
		{"valid", "Str0ng!Password", ""},
		{"too short", "Ab1!short", "at least 12 characters"},
		{"too long", strings.Repeat("Aa1!", 40), "must not exceed 128"},
		{"no uppercase", "weak!password1", "uppercase"},
		{"no lowercase", "WEAK!PASSWORD1", "lowercase"},
		{"no digit", "Weak!Password", "digit"},
		{"no special", "WeakPassword12", "special"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr == "" {
				assert.NoError(t, err)
			} else {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
			}
		})
	}
}

func TestValidateUsername(t *testing.T) {
	assert.NoError(t, ValidateUsername("glaze_works"))
	assert.NoError(t, ValidateUsername("abc"))
	assert.Error(t, ValidateUsername("ab"))
	assert.Error(t, ValidateUsername(strings.Repeat("a", 31)))
	assert.Error(t, ValidateUsername("no spaces"))
	assert.Error(t, ValidateUsername("_leading"))
	assert.Error(t, ValidateUsername("trailing-"))
}

func TestValidateEmail(t *testing.T) {
	assert.NoError(t, ValidateEmail("ada@example.com"))
	assert.Error(t, ValidateEmail("not-an-email"))
	assert.Error(t, ValidateEmail("missing@tld"))
}

func TestNormalizeTags(t *testing.T) {
	tags, err := NormalizeTags([]string{" Ceramics ", "ceramics", "raku-firing", ""})
	require.NoError(t, err)
	assert.Equal(t, []string{"ceramics", "raku-firing"}, tags)

	_, err = NormalizeTags([]string{"-leading"})
	assert.Error(t, err)

	_, err = NormalizeTags([]string{"Bad Tag!"})
	assert.Error(t, err)

	eleven := make([]string, 11)
	for i := range eleven {
		eleven[i] = "tag" + string(rune('a'+i))
	}
	_, err = NormalizeTags(eleven)
	assert.Error(t, err)
}

func TestValidateImageURLs(t *testing.T) {
	assert.NoError(t, ValidateImageURLs([]string{"https://example.com/a.jpg"}))
	assert.Error(t, ValidateImageURLs([]string{" "}))

	many := make([]string, 21)
	for i := range many {
		many[i] = "https://example.com/img.jpg"
	}
	assert.Error(t, ValidateImageURLs(many))
}

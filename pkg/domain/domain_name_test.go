package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	dErrors "registrar/pkg/domain-errors"
)

func TestParseDomainName(t *testing.T) {
	tests := []struct {
		in      string
		want    DomainName
		wantErr bool
	}{
		{in: "igorville.gov", want: "igorville.gov"},
		{in: "IgorVille.GOV", want: "igorville.gov"},
		{in: " city.gov. ", want: "city.gov"},
		{in: "sub.city.gov", want: "sub.city.gov"},
		{in: "", wantErr: true},
		{in: "igorville.com", wantErr: true},
		{in: "gov", wantErr: true},
		{in: "-bad.gov", wantErr: true},
		{in: "under_score.gov", wantErr: true},
	}
	for _, tc := range tests {
		got, err := ParseDomainName(tc.in)
		if tc.wantErr {
			require.Error(t, err, "input %q", tc.in)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidInput))
			continue
		}
		require.NoError(t, err, "input %q", tc.in)
		assert.Equal(t, tc.want, got)
	}
}

func TestIsParentOf(t *testing.T) {
	d := DomainName("igorville.gov")
	assert.True(t, d.IsParentOf("ns1.igorville.gov"))
	assert.True(t, d.IsParentOf("NS1.IGORVILLE.GOV."))
	assert.False(t, d.IsParentOf("igorville.gov"))
	assert.False(t, d.IsParentOf("ns1.example.com"))
	assert.False(t, d.IsParentOf("otherigorville.gov"))
}

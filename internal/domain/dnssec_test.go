package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"registrar/internal/epp"
)

func TestValidateDsData(t *testing.T) {
	sha256Digest := strings.Repeat("ab", 32)
	sha1Digest := strings.Repeat("ab", 20)

	tests := []struct {
		desc     string
		record   epp.DsData
		wantCode DsDataErrorCode
	}{
		{
			desc:     "key tag above the unsigned 16-bit range",
			record:   epp.DsData{KeyTag: 65536, Alg: 13, DigestType: 2, Digest: sha256Digest},
			wantCode: DsInvalidKeytagSize,
		},
		{
			desc:     "negative key tag",
			record:   epp.DsData{KeyTag: -1, Alg: 13, DigestType: 2, Digest: sha256Digest},
			wantCode: DsInvalidKeytagSize,
		},
		{
			desc:     "non-hex digest characters",
			record:   epp.DsData{KeyTag: 1234, Alg: 13, DigestType: 2, Digest: strings.Repeat("zz", 32)},
			wantCode: DsInvalidDigestChars,
		},
		{
			desc:     "sha-1 digest of the wrong length",
			record:   epp.DsData{KeyTag: 1234, Alg: 13, DigestType: 1, Digest: sha256Digest},
			wantCode: DsInvalidDigestSha1,
		},
		{
			desc:     "sha-256 digest of the wrong length",
			record:   epp.DsData{KeyTag: 1234, Alg: 13, DigestType: 2, Digest: sha1Digest},
			wantCode: DsInvalidDigestSha256,
		},
	}

	for _, tc := range tests {
		t.Run(tc.desc, func(t *testing.T) {
			err := validateDsData([]epp.DsData{tc.record})
			var dsErr *DsDataError
			require.ErrorAs(t, err, &dsErr)
			assert.Equal(t, tc.wantCode, dsErr.Code)
			assert.NotEmpty(t, dsErr.Error())
		})
	}

	t.Run("boundary key tags and well formed digests pass", func(t *testing.T) {
		records := []epp.DsData{
			{KeyTag: 0, Alg: 8, DigestType: 1, Digest: sha1Digest},
			{KeyTag: 65535, Alg: 13, DigestType: 2, Digest: strings.ToUpper(sha256Digest)},
		}
		assert.NoError(t, validateDsData(records))
	})

	t.Run("empty set passes validation", func(t *testing.T) {
		assert.NoError(t, validateDsData(nil))
	})
}

package layout

import (
	"encoding/hex"
	"strconv"
	"strings"
	"time"

	"golang.org/x/crypto/blake2b"

	id "certportal/pkg/domain"
)

// DisplayID derives the identifier printed on the certificate:
// CERT-<creation year>-<first 8 hex digits of BLAKE2b-256(uuid)>. Both parts
// are fixed at creation, so approval never changes it. It is for display only
// and is not guaranteed unique.
func DisplayID(certID id.CertificateID, createdAt time.Time) string {
	sum := blake2b.Sum256(certID[:])
	return "CERT-" + strconv.Itoa(createdAt.UTC().Year()) + "-" + strings.ToUpper(hex.EncodeToString(sum[:4]))
}

package shared

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocumentID builds a prefixed document identifier such as
// SALE-20240102150405-9F3A. The timestamp keeps ids roughly sortable and the
// uuid fragment disambiguates documents created within the same second.
func DocumentID(prefix string, now time.Time) string {
	frag := strings.ToUpper(uuid.NewString()[:4])
	return fmt.Sprintf("%s-%s-%s", prefix, now.UTC().Format("20060102150405"), frag)
}

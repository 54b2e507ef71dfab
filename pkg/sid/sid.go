package sid

import (
	"strconv"

	"github.com/sony/sonyflake"
)

// Sid generates short, sortable, collision-resistant IDs for deploy-run and
// request trace correlation. It is never used for uploadId, which stays
// content-derived.
type Sid struct {
	sf *sonyflake.Sonyflake
}

func NewSid() *Sid {
	sf := sonyflake.NewSonyflake(sonyflake.Settings{})
	if sf == nil {
		panic("sid: failed to initialize sonyflake generator")
	}
	return &Sid{sf: sf}
}

func (s *Sid) GenString() (string, error) {
	id, err := s.sf.NextID()
	if err != nil {
		return "", err
	}
	return strconv.FormatUint(id, 36), nil
}

package pagination

import (
	"math"

	"github.com/gin-gonic/gin"
	"github.com/richxcame/car-rental/pkg/common"
)

const (
	// DefaultLimit is the default number of items per page
	DefaultLimit = 20
	// MaxLimit is the maximum number of items per page
	MaxLimit = 100
)

// Params represents pagination parameters
type Params struct {
	Limit  int `form:"limit" json:"limit"`
	Offset int `form:"offset" json:"offset"`
}

// Normalize clamps limit into (0, MaxLimit] and offset to >= 0
func (p Params) Normalize() Params {
	if p.Limit <= 0 {
		p.Limit = DefaultLimit
	}
	if p.Limit > MaxLimit {
		p.Limit = MaxLimit
	}
	if p.Offset < 0 {
		p.Offset = 0
	}
	return p
}

// ParseParams extracts pagination parameters from the query string.
// Malformed values fall back to the defaults.
func ParseParams(c *gin.Context) Params {
	var params Params
	if err := c.ShouldBindQuery(&params); err != nil {
		return Params{}.Normalize()
	}
	return params.Normalize()
}

// Window returns the page of items selected by p
func Window[T any](items []T, p Params) []T {
	p = p.Normalize()
	if p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}

// BuildMeta creates pagination metadata for responses
func BuildMeta(p Params, total int64) *common.Meta {
	meta := &common.Meta{
		Limit:  p.Limit,
		Offset: p.Offset,
		Total:  total,
	}
	if p.Limit > 0 {
		meta.TotalPages = int(math.Ceil(float64(total) / float64(p.Limit)))
	}
	return meta
}

package att

import (
	log "github.com/mgutz/logxi/v1"

	"github.com/lunarlabs/bt"
)

var logger = log.New("att")

// attr is one row of the attribute database.
type attr struct {
	h    uint16
	endh uint16 // end-group handle; equals h for non-grouping attributes
	typ  bt.UUID
	v    []byte
	perm bt.Permission

	// grpEndh is the end-group handle of the service this attribute
	// belongs to, used by Find By Type Value.
	grpEndh uint16

	rh bt.Handler
	wh bt.Handler
}

// Handle returns the attribute handle.
func (a *attr) Handle() uint16 { return a.h }

// EndingHandle returns the end-group handle.
func (a *attr) EndingHandle() uint16 { return a.endh }

// Type returns the attribute type.
func (a *attr) Type() bt.UUID { return a.typ }

// Value returns the attribute value, nil when reads are served by a handler.
func (a *attr) Value() []byte { return a.v }

// Permissions returns the attribute's permission set.
func (a *attr) Permissions() bt.Permission { return a.perm }

// DumpAttributes logs the generated attribute table.
func DumpAttributes(aa []*attr) {
	if !logger.IsDebug() {
		return
	}
	logger.Debug("generated attribute table")
	for _, a := range aa {
		name := bt.Name(a.typ)
		if a.v != nil {
			logger.Debug("attr", "handle", a.h, "end", a.endh, "type", a.typ.String(), "name", name, "value", a.v)
			continue
		}
		logger.Debug("attr", "handle", a.h, "end", a.endh, "type", a.typ.String(), "name", name)
	}
}

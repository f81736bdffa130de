// Package filetype validates attached files by magic bytes, not filename.
package filetype

import (
	"github.com/gabriel-vasile/mimetype"
	"github.com/rs/zerolog/log"
)

// Info describes a detected file type.
type Info struct {
	MIMEType  string
	Extension string
	IsPDF     bool
}

// Detect inspects raw bytes and reports the actual file type.
func Detect(name string, data []byte) Info {
	mtype := mimetype.Detect(data)
	info := Info{
		MIMEType:  mtype.String(),
		Extension: mtype.Extension(),
		IsPDF:     mtype.Is("application/pdf"),
	}
	log.Debug().Str("file", name).Str("mime", info.MIMEType).Bool("pdf", info.IsPDF).Msg("detected file type")
	return info
}

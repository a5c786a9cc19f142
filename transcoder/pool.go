package transcoder

import (
	"sync"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
)

type transformerPools struct {
	encoders sync.Pool
	decoders sync.Pool
}

func newTransformerPools() *transformerPools {
	return &transformerPools{
		encoders: sync.Pool{
			New: func() any {
				return japanese.ShiftJIS.NewEncoder()
			},
		},
		decoders: sync.Pool{
			New: func() any {
				return korean.EUCKR.NewDecoder()
			},
		},
	}
}

func (p *transformerPools) getEncoder() *encoding.Encoder {
	return p.encoders.Get().(*encoding.Encoder)
}

func (p *transformerPools) putEncoder(e *encoding.Encoder) {
	e.Reset()
	p.encoders.Put(e)
}

func (p *transformerPools) getDecoder() *encoding.Decoder {
	return p.decoders.Get().(*encoding.Decoder)
}

func (p *transformerPools) putDecoder(d *encoding.Decoder) {
	d.Reset()
	p.decoders.Put(d)
}

package ticket

import (
	"bytes"
	"strconv"
	"strings"

	"github.com/juju/errors"
	"github.com/paulrosania/go-charset/charset"
	_ "github.com/paulrosania/go-charset/data"
	"github.com/skip2/go-qrcode"
	"github.com/temoto/paystation/log2"
)

const (
	DefaultWidth = 32
	MinWidth     = 24
)

// QR cell glyphs. Codepage output has no block characters.
const (
	qrDarkUTF8  = "██"
	qrDarkASCII = "##"
	qrLight     = "  "
)

type Config struct {
	Width    int    `hcl:"width"`
	Codepage string `hcl:"codepage"`
	QR       bool   `hcl:"qr"`
}

type Printer struct {
	Log      *log2.Log
	width    int
	codepage string
	qr       bool
}

func NewPrinter(c Config, log *log2.Log) (*Printer, error) {
	p := &Printer{
		Log:      log,
		width:    c.Width,
		codepage: c.Codepage,
		qr:       c.QR,
	}
	if p.width == 0 {
		p.width = DefaultWidth
	}
	if p.width < MinWidth {
		return nil, errors.NotValidf("receipt width=%d < %d", p.width, MinWidth)
	}
	if p.codepage != "" {
		if _, err := charset.TranslatorTo(p.codepage); err != nil {
			return nil, errors.Annotatef(err, "receipt codepage=%s", p.codepage)
		}
	}
	return p, nil
}

func (p *Printer) Render(t Ticket) ([]byte, error) {
	var buf bytes.Buffer
	rule := strings.Repeat("=", p.width)
	buf.WriteString(rule + "\n")
	buf.WriteString(p.center("PARKING RECEIPT") + "\n")
	if t.Station != "" {
		buf.WriteString(p.pair("station", t.Station) + "\n")
	}
	buf.WriteString(p.pair("ticket", t.ShortID()) + "\n")
	buf.WriteString(p.pair("issued", t.Issued.Format(TimeFormat)) + "\n")
	buf.WriteString(p.pair("minutes", strconv.Itoa(t.Minutes)) + "\n")
	buf.WriteString(p.pair("paid", t.Paid.Format100I()) + "\n")
	buf.WriteString(p.pair("valid until", t.ValidUntil().Format(TimeFormat)) + "\n")
	buf.WriteString(rule + "\n")

	if p.qr {
		dark := qrDarkUTF8
		if p.codepage != "" {
			dark = qrDarkASCII
		}
		block, err := qrBlock(t.Code(), dark)
		if err != nil {
			return nil, errors.Annotatef(err, "ticket=%s", t.ShortID())
		}
		buf.WriteString(block)
	}

	if p.codepage == "" {
		return buf.Bytes(), nil
	}
	tr, err := charset.TranslatorTo(p.codepage)
	if err != nil {
		return nil, errors.Annotatef(err, "receipt codepage=%s", p.codepage)
	}
	_, tb, err := tr.Translate(buf.Bytes(), true)
	if err != nil {
		return nil, errors.Annotatef(err, "receipt translate codepage=%s", p.codepage)
	}
	// translator reuses single internal buffer, make a copy
	return append([]byte(nil), tb...), nil
}

func (p *Printer) center(s string) string {
	if len(s) >= p.width {
		return s[:p.width]
	}
	return strings.Repeat(" ", (p.width-len(s))/2) + s
}

func (p *Printer) pair(key, value string) string {
	room := p.width - len(key) - 1
	if room < 1 {
		return key[:p.width]
	}
	if len(value) > room {
		value = value[:room]
	}
	return key + strings.Repeat(" ", p.width-len(key)-len(value)) + value
}

func qrBlock(text, dark string) (string, error) {
	qr, err := qrcode.New(text, qrcode.Medium)
	if err != nil {
		return "", errors.Annotate(err, "QR")
	}
	qr.DisableBorder = true
	bitmap := qr.Bitmap()
	b := strings.Builder{}
	b.Grow(len(bitmap) * (len(bitmap)*len(dark) + 1))
	for _, row := range bitmap {
		for _, cell := range row {
			if cell {
				b.WriteString(dark)
			} else {
				b.WriteString(qrLight)
			}
		}
		b.WriteRune('\n')
	}
	return b.String(), nil
}

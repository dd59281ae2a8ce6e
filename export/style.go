package export

import "github.com/xuri/excelize/v2"

const (
	grey50 = "#808080"
	grey25 = "#C0C0C0"

	borderNone = 0
	borderThin = 1
)

// Font describes the font of a Style.
type Font struct {
	Family string
	Size   float64
	Bold   bool
	Italic bool
	Color  string
}

// Style is a mutable cell style handle. Handles are shared by every cell
// they are assigned to and are turned into workbook styles when the
// export is converted or restyled.
type Style struct {
	Font        Font
	FillColor   string
	BorderColor string
	BorderStyle int
	Horizontal  Alignment
	Vertical    string
	WrapText    bool
	NumFmt      string
}

// Clone returns an independent copy of s.
func (s *Style) Clone() *Style {
	if s == nil {
		return nil
	}
	cp := *s
	return &cp
}

func (s *Style) excelize(align Alignment) *excelize.Style {
	font := s.Font
	if font.Size == 0 {
		font.Size = 11
	}
	out := &excelize.Style{
		Font: &excelize.Font{
			Family: font.Family,
			Size:   font.Size,
			Bold:   font.Bold,
			Italic: font.Italic,
			Color:  font.Color,
		},
	}
	if s.FillColor != "" {
		out.Fill = excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{s.FillColor}}
	}
	if s.BorderStyle != borderNone {
		color := s.BorderColor
		if color == "" {
			color = "#000000"
		}
		for _, side := range []string{"left", "top", "right", "bottom"} {
			out.Border = append(out.Border, excelize.Border{Type: side, Color: color, Style: s.BorderStyle})
		}
	}
	horizontal := s.Horizontal
	if align != AlignGeneral {
		horizontal = align
	}
	out.Alignment = &excelize.Alignment{
		Horizontal: string(horizontal),
		Vertical:   s.Vertical,
		WrapText:   s.WrapText,
	}
	if s.NumFmt != "" {
		numFmt := s.NumFmt
		out.CustomNumFmt = &numFmt
	}
	return out
}

// Styles holds the base style families of an export plus the memoized
// styles created for per-column format overrides.
type Styles struct {
	title         *Style
	header        *Style
	rowHeader     *Style
	double        *Style
	integer       *Style
	date          *Style
	totalsDouble  *Style
	totalsInteger *Style

	formats       map[string]*Style
	totalsFormats map[string]*Style
}

// NewStyles builds the default style families using the data formats of cfg.
func NewStyles(cfg Config) *Styles {
	data := Style{
		Horizontal:  AlignCenter,
		Vertical:    "center",
		WrapText:    true,
		BorderStyle: borderThin,
		BorderColor: "#000000",
	}
	totals := Style{
		Font:        Font{Size: 11, Bold: true},
		FillColor:   grey25,
		Horizontal:  AlignCenter,
		Vertical:    "center",
		BorderStyle: borderThin,
		BorderColor: "#000000",
	}

	s := &Styles{
		title: &Style{
			Font:       Font{Size: 18, Bold: true},
			Horizontal: AlignCenter,
			Vertical:   "center",
		},
		header: &Style{
			Font:        Font{Size: 11, Bold: true, Color: "#FFFFFF"},
			FillColor:   grey50,
			Horizontal:  AlignCenter,
			Vertical:    "center",
			WrapText:    true,
			BorderStyle: borderThin,
			BorderColor: "#000000",
		},
		formats:       make(map[string]*Style),
		totalsFormats: make(map[string]*Style),
	}

	s.double = withFormat(data, orDefault(cfg.DoubleFormat, DefaultDoubleFormat))
	s.integer = withFormat(data, orDefault(cfg.IntegerFormat, DefaultIntegerFormat))
	s.date = withFormat(data, orDefault(cfg.DateFormat, DefaultDateFormat))
	s.totalsDouble = withFormat(totals, orDefault(cfg.DoubleFormat, DefaultDoubleFormat))
	s.totalsInteger = withFormat(totals, orDefault(cfg.IntegerFormat, DefaultIntegerFormat))
	return s
}

func withFormat(base Style, format string) *Style {
	base.NumFmt = format
	return &base
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}

func (s *Styles) Title() *Style         { return s.title }
func (s *Styles) Header() *Style        { return s.header }
func (s *Styles) Double() *Style        { return s.double }
func (s *Styles) Integer() *Style       { return s.integer }
func (s *Styles) Date() *Style          { return s.date }
func (s *Styles) TotalsDouble() *Style  { return s.totalsDouble }
func (s *Styles) TotalsInteger() *Style { return s.totalsInteger }

// RowHeader returns the row header style, falling back to the header style.
func (s *Styles) RowHeader() *Style {
	if s.rowHeader != nil {
		return s.rowHeader
	}
	return s.header
}

func (s *Styles) SetTitle(style *Style)         { s.title = style }
func (s *Styles) SetHeader(style *Style)        { s.header = style }
func (s *Styles) SetRowHeader(style *Style)     { s.rowHeader = style }
func (s *Styles) SetDouble(style *Style)        { s.double = style }
func (s *Styles) SetInteger(style *Style)       { s.integer = style }
func (s *Styles) SetDate(style *Style)          { s.date = style }
func (s *Styles) SetTotalsDouble(style *Style)  { s.totalsDouble = style }
func (s *Styles) SetTotalsInteger(style *Style) { s.totalsInteger = style }

// SetDoubleFormat changes the number format of the double data and totals styles.
func (s *Styles) SetDoubleFormat(format string) {
	s.double.NumFmt = format
	s.totalsDouble.NumFmt = format
}

// SetIntegerFormat changes the number format of the integer data and totals styles.
func (s *Styles) SetIntegerFormat(format string) {
	s.integer.NumFmt = format
	s.totalsInteger.NumFmt = format
}

// SetDateFormat changes the number format of the date data style.
func (s *Styles) SetDateFormat(format string) {
	s.date.NumFmt = format
}

// ForFormat returns the data style for a custom format, creating it from
// the double style on first use.
func (s *Styles) ForFormat(format string) *Style {
	if style, ok := s.formats[format]; ok {
		return style
	}
	style := s.double.Clone()
	style.NumFmt = format
	s.formats[format] = style
	return style
}

// TotalsForFormat is ForFormat for the totals row.
func (s *Styles) TotalsForFormat(format string) *Style {
	if style, ok := s.totalsFormats[format]; ok {
		return style
	}
	style := s.totalsDouble.Clone()
	style.NumFmt = format
	s.totalsFormats[format] = style
	return style
}

type rowKind int

const (
	rowData rowKind = iota
	rowTotals
)

func (s *Styles) resolve(kind rowKind, index int, col column, rowHeaders bool) *Style {
	if rowHeaders && index == 0 {
		return s.RowHeader()
	}
	if kind == rowTotals {
		switch {
		case col.Format != "":
			return s.TotalsForFormat(col.Format)
		case col.Type == TypeInteger:
			return s.totalsInteger
		default:
			return s.totalsDouble
		}
	}
	if col.Format != "" {
		return s.ForFormat(col.Format)
	}
	switch col.Type {
	case TypeInteger:
		return s.integer
	case TypeDate:
		return s.date
	default:
		return s.double
	}
}

type styleKey struct {
	style *Style
	align Alignment
}

// styleCache materializes style handles into workbook style ids.
type styleCache struct {
	file *excelize.File
	ids  map[styleKey]int
}

func newStyleCache(file *excelize.File) *styleCache {
	return &styleCache{file: file, ids: make(map[styleKey]int)}
}

func (c *styleCache) id(style *Style, align Alignment) (int, error) {
	if style == nil {
		return 0, nil
	}
	key := styleKey{style: style, align: align}
	if id, ok := c.ids[key]; ok {
		return id, nil
	}
	id, err := c.file.NewStyle(style.excelize(align))
	if err != nil {
		return 0, err
	}
	c.ids[key] = id
	return id, nil
}

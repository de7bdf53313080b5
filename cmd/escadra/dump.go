package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#7D56F4"))

	addrStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))

	nameStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#98FB98"))

	kindStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))
)

// printer renders styles only when writing to a terminal.
type printer struct {
	w     io.Writer
	color bool
}

func (p printer) style(st lipgloss.Style, s string) string {
	if !p.color {
		return s
	}
	return st.Render(s)
}

// hexDump writes data sixteen bytes per line, labeled with absolute
// addresses starting at base.
func (p printer) hexDump(base uint32, data []byte) {
	for off := 0; off < len(data); off += 16 {
		line := data[off:min(off+16, len(data))]

		var hexPart, text strings.Builder
		for i := range 16 {
			if i == 8 {
				hexPart.WriteByte(' ')
			}
			if i < len(line) {
				fmt.Fprintf(&hexPart, "%02x ", line[i])
			} else {
				hexPart.WriteString("   ")
			}
		}
		for _, c := range line {
			if c >= 0x20 && c < 0x7f {
				text.WriteByte(c)
			} else {
				text.WriteByte('.')
			}
		}

		fmt.Fprintf(p.w, "%s  %s |%s|\n",
			p.style(addrStyle, fmt.Sprintf("%08x", base+uint32(off))),
			hexPart.String(), text.String())
	}
}

func (p printer) fieldTable(s *session) {
	for _, row := range s.rows() {
		line := fmt.Sprintf("%s  %s %s  %-20s %s",
			p.style(addrStyle, fmt.Sprintf("%#05x", row.offset)),
			p.style(kindStyle, fmt.Sprintf("%-8s", row.kind)),
			fmt.Sprintf("%3d", row.size),
			p.style(nameStyle, row.name),
			row.value)
		if st := s.storage(row); st != "" {
			line += "  " + p.style(addrStyle, st)
		}
		fmt.Fprintln(p.w, line)
	}
}

// report prints the field table, the record image and every heap block.
func (p printer) report(s *session) error {
	img, err := s.image()
	if err != nil {
		return err
	}
	blocks := s.blocks()

	fmt.Fprintln(p.w, p.style(headerStyle, fmt.Sprintf("ammo %s at %#x, %d bytes, %d heap blocks",
		s.rec.Version(), s.addr, len(img), len(blocks))))
	p.fieldTable(s)

	fmt.Fprintln(p.w)
	fmt.Fprintln(p.w, p.style(headerStyle, "record"))
	p.hexDump(s.addr, img)

	for _, b := range blocks {
		data, err := s.mem.Read(b.Ptr, b.Size)
		if err != nil {
			return err
		}
		fmt.Fprintln(p.w)
		fmt.Fprintln(p.w, p.style(headerStyle, fmt.Sprintf("heap %#x+%d", b.Ptr, b.Size)))
		p.hexDump(b.Ptr, data)
	}
	return nil
}

package space

import (
	"fmt"
	"io"
	"strings"

	"github.com/joshuapare/memkit/mem/region"
)

// Read8 reads the byte at the absolute address addr from whichever region
// covers it.
func (s *Space) Read8(addr uint64) (uint8, error) {
	e, err := s.RegionAt(addr)
	if err != nil {
		return 0, err
	}
	return e.Region.Read8(addr)
}

// Read16 reads a little-endian 16-bit value at addr.
func (s *Space) Read16(addr uint64) (uint16, error) {
	e, err := s.RegionAt(addr)
	if err != nil {
		return 0, err
	}
	return e.Region.Read16(addr)
}

// Read32 reads a little-endian 32-bit value at addr.
func (s *Space) Read32(addr uint64) (uint32, error) {
	e, err := s.RegionAt(addr)
	if err != nil {
		return 0, err
	}
	return e.Region.Read32(addr)
}

// Read64 reads a little-endian 64-bit value at addr.
func (s *Space) Read64(addr uint64) (uint64, error) {
	e, err := s.RegionAt(addr)
	if err != nil {
		return 0, err
	}
	return e.Region.Read64(addr)
}

func (s *Space) Write8(addr uint64, v uint8) error {
	e, err := s.RegionAt(addr)
	if err != nil {
		return err
	}
	return e.Region.Write8(addr, v)
}

func (s *Space) Write16(addr uint64, v uint16) error {
	e, err := s.RegionAt(addr)
	if err != nil {
		return err
	}
	return e.Region.Write16(addr, v)
}

func (s *Space) Write32(addr uint64, v uint32) error {
	e, err := s.RegionAt(addr)
	if err != nil {
		return err
	}
	return e.Region.Write32(addr, v)
}

func (s *Space) Write64(addr uint64, v uint64) error {
	e, err := s.RegionAt(addr)
	if err != nil {
		return err
	}
	return e.Region.Write64(addr, v)
}

// ReadBytes fills p from the region covering addr. The whole range must lie
// in that one region.
func (s *Space) ReadBytes(addr uint64, p []byte) error {
	e, err := s.RegionAt(addr)
	if err != nil {
		return err
	}
	return e.Region.ReadBytes(addr, p)
}

// WriteBytes copies p into the region covering addr.
func (s *Space) WriteBytes(addr uint64, p []byte) error {
	e, err := s.RegionAt(addr)
	if err != nil {
		return err
	}
	return e.Region.WriteBytes(addr, p)
}

// WriteTo prints one line per region in base address order:
//
//	regions:
//	   rom       (    File     )  : 0x00000000001000 -> 0x00000000001fff
func (s *Space) WriteTo(w io.Writer) (int64, error) {
	var sb strings.Builder
	sb.WriteString("regions:\n")
	for _, e := range s.byBase {
		r := e.Region
		fmt.Fprintf(&sb, "   %-10s(%s)  : %#016x -> %#016x\n",
			e.Name, center(describe(r), 13), r.Base(), r.Base()+r.Size()-1)
	}
	n, err := io.WriteString(w, sb.String())
	return int64(n), err
}

func (s *Space) String() string {
	var sb strings.Builder
	_, _ = s.WriteTo(&sb)
	return sb.String()
}

func describe(r *region.Region) string {
	if err := r.Check(); err != nil {
		return "freed"
	}
	return r.Describe()
}

func center(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := width - len(s)
	left := pad / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", pad-left)
}

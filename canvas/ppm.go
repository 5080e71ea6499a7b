package canvas

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
)

// ppmLineLimit is the longest line a plain PPM reader must accept.
const ppmLineLimit = 70

// WritePPM writes c as a plain-text (P3) PPM image.
func (c *Canvas) WritePPM(w io.Writer) error {
	bw := bufio.NewWriter(w)

	if _, err := fmt.Fprintf(bw, "P3\n%d %d\n255\n", c.Width, c.Height); err != nil {
		return fmt.Errorf("while writing header: %w", err)
	}

	line := make([]byte, 0, ppmLineLimit)
	for y := 0; y < c.Height; y++ {
		line = line[:0]
		for x := 0; x < c.Width; x++ {
			p := c.PixelAt(x, y)
			for _, v := range p {
				val := strconv.Itoa(int(ToByte(v)))
				if len(line) > 0 && len(line)+len(val)+1 > ppmLineLimit {
					line = append(line, '\n')
					if _, err := bw.Write(line); err != nil {
						return fmt.Errorf("while writing row %d: %w", y, err)
					}
					line = line[:0]
				}
				if len(line) > 0 {
					line = append(line, ' ')
				}
				line = append(line, val...)
			}
		}
		line = append(line, '\n')
		if _, err := bw.Write(line); err != nil {
			return fmt.Errorf("while writing row %d: %w", y, err)
		}
	}

	if err := bw.Flush(); err != nil {
		return fmt.Errorf("while flushing: %w", err)
	}
	return nil
}

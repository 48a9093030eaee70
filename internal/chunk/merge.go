package chunk

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"pkg.jsn.cam/execreduce/pkg/execreduce"
)

// MergeChunks concatenates chunks 0..count-1 of inDir into output in index
// order. Lines are copied verbatim; a final line without a terminator gets
// one so chunks never run into each other.
//
// On error the output file is removed, so a failed merge leaves no partial
// output behind.
func MergeChunks(inDir, output string, count int) (err error) {
	out, err := createOutput(output)
	if err != nil {
		return fmt.Errorf("merge chunks: %w", err)
	}
	defer func() {
		if err != nil {
			out.Close()
			os.Remove(output)
		}
	}()

	w := bufio.NewWriterSize(out, 64<<10)
	for i := range count {
		if err := appendChunk(w, Path(inDir, i)); err != nil {
			return fmt.Errorf("merge chunk %d: %w", i, err)
		}
	}

	if err := w.Flush(); err != nil {
		return fmt.Errorf("%w: merge chunks: flush %s: %w", execreduce.ErrIO, output, err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w: merge chunks: close %s: %w", execreduce.ErrIO, output, err)
	}

	return nil
}

func appendChunk(w *bufio.Writer, path string) error {
	f, err := openInput(path)
	if err != nil {
		return err
	}
	defer f.Close()

	r := bufio.NewReaderSize(f, 64<<10)
	partial := false
	for {
		line, err := r.ReadSlice('\n')
		if len(line) > 0 {
			if _, werr := w.Write(line); werr != nil {
				return fmt.Errorf("%w: write: %w", execreduce.ErrIO, werr)
			}
			partial = line[len(line)-1] != '\n'
		}

		switch {
		case err == nil, errors.Is(err, bufio.ErrBufferFull):
			continue
		case errors.Is(err, io.EOF):
			if partial {
				return w.WriteByte('\n')
			}
			return nil
		default:
			return fmt.Errorf("%w: read %s: %w", execreduce.ErrIO, path, err)
		}
	}
}

package server

import (
	"bufio"
	"context"
	"fmt"
	"io"
)

const maxLineSize = 1 << 20

// ServeStdio 从 r 逐行读取请求，处理后将响应写回 w（NDJSON，每条 JSON 单独一行）。
// It returns nil when r reaches EOF or ctx is done.
//
// Reads from r cannot be interrupted, so after ctx is done the reading
// goroutine stays blocked in r until r returns; it exits on the next line,
// EOF or read error without writing to w again. Callers that need it gone must
// close r themselves. The server binary reads os.Stdin and exits right after
// ServeStdio returns, which releases it.
func (s *Server) ServeStdio(ctx context.Context, r io.Reader, w io.Writer) error {
	s.logger.Info("serving on stdio")

	errCh := make(chan error, 1)
	go func() {
		errCh <- s.serveLines(ctx, r, w)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("shutting down")
		return nil
	}
}

func (s *Server) serveLines(ctx context.Context, r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	for scanner.Scan() {
		if ctx.Err() != nil {
			return nil
		}
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}

		respBytes := s.HandleRequest(ctx, line)

		// 添加换行符以符合 NDJSON 格式
		if _, err := w.Write(append(respBytes, '\n')); err != nil {
			return fmt.Errorf("write response: %w", err)
		}
	}

	// 检查是否因非 EOF 原因导致读取失败
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("read request: %w", err)
	}
	s.logger.Debug("stdin closed")
	return nil
}

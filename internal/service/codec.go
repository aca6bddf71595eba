// Package service serializes access to a huffpack.Manager for concurrent callers.
package service

import (
	"errors"
	"fmt"
	"sync"

	"github.com/seiflotfy/huffpack"
	"github.com/seiflotfy/huffpack/internal/logger"
)

var ErrNotFound = errors.New("algorithm not found")

type Listing struct {
	Algorithms []huffpack.Info `json:"algorithms"`
	Current    string          `json:"current"`
}

type CodecService struct {
	mu      sync.Mutex
	manager *huffpack.Manager
	logger  logger.Logger
}

func NewCodecService(m *huffpack.Manager, l logger.Logger) *CodecService {
	return &CodecService{manager: m, logger: l}
}

func (s *CodecService) List() Listing {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := Listing{Current: s.manager.CurrentName()}
	for _, name := range s.manager.Algorithms() {
		info, _ := s.manager.Info(name)
		out.Algorithms = append(out.Algorithms, info)
	}
	return out
}

func (s *CodecService) Info(name string) (huffpack.Info, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	info, ok := s.manager.Info(name)
	if !ok {
		return huffpack.Info{}, fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	return info, nil
}

func (s *CodecService) Select(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.manager.Select(name) {
		return fmt.Errorf("%w: %q", ErrNotFound, name)
	}
	s.logger.Infof("algorithm selected: %s", s.manager.CurrentName())
	return nil
}

// Compress uses the named algorithm, or the current one when name is empty.
func (s *CodecService) Compress(name, text string) (huffpack.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		res  huffpack.Result
		err  error
		algo = name
	)
	if name == "" {
		algo = s.manager.CurrentName()
		res, err = s.manager.Compress(text)
	} else {
		res, err = s.manager.CompressWith(name, text)
		if errors.Is(err, huffpack.ErrUnknownAlgorithm) {
			return huffpack.Result{}, fmt.Errorf("%w: %q", ErrNotFound, name)
		}
	}
	if err != nil {
		s.logger.Errorf("compress with %s: %v", algo, err)
		return huffpack.Result{}, err
	}
	if !res.Empty() {
		s.logger.Infof("compressed %d -> %d bytes with %s (%.1f%%)", res.OriginalSize, res.CompressedSize, res.Algorithm, res.Rate)
	}
	return res, nil
}

func (s *CodecService) Decompress(data []byte) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	text, err := s.manager.Decompress(data)
	if err != nil {
		s.logger.Errorf("decompress %d bytes: %v", len(data), err)
		return "", err
	}
	return text, nil
}

func (s *CodecService) Summarize(text string) huffpack.TextStats {
	return huffpack.Summarize(text)
}

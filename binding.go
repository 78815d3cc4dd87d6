// SPDX-License-Identifier: Unlicense OR MIT

package glsurface

import (
	"gioui.org/glsurface/platform"
)

// withSurface unbinds the surface from the context, calls f with it and
// binds it again on every return path of f, including panics. If f
// fails the surface is still rebound and f's error is returned.
//
// If binding fails, the surface stays in s.detached, the bind error is
// returned unless f failed first, and the next call starts from the
// detached surface instead of unbinding.
func (s *Session) withSurface(op string, f func(surf platform.Surface) error) (err error) {
	surf, err := s.takeSurface(op)
	if err != nil {
		return err
	}
	s.log.Debug("surface unbound", "op", op)
	defer func() {
		if berr := s.dev.BindSurface(s.ctx, surf); berr != nil {
			s.detached = surf
			s.log.Warn("rebinding surface failed", "op", op, "err", berr)
			if err == nil {
				err = surfaceErr("bind", berr)
			}
		}
	}()
	return f(surf)
}

func (s *Session) takeSurface(op string) (platform.Surface, error) {
	if s.dev == nil {
		return nil, surfaceErr(op, ErrReleased)
	}
	if surf := s.detached; surf != nil {
		s.detached = nil
		return surf, nil
	}
	surf, err := s.dev.UnbindSurface(s.ctx)
	if err != nil {
		return nil, surfaceErr("unbind", err)
	}
	if surf == nil {
		return nil, surfaceErr("unbind", ErrNoSurface)
	}
	return surf, nil
}

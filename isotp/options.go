// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package isotp

import "time"

// Config holds the per-stack CAN-TP parameters of §6's "Configuration (per
// stack)": STmin, BS, MAX_DL, addressing mode, and zero padding.
type Config struct {
	// STmin is the minimum separation time this stack requests of its peer
	// between consecutive frames, advertised in this stack's own FC frames.
	STmin time.Duration
	// BlockSize is the number of CFs this stack requests before the peer
	// must wait for another FC; 0 means unlimited.
	BlockSize byte
	// MaxDL caps the largest message this stack will segment or reassemble.
	// Zero defaults to the protocol ceiling, MaxDL (4095).
	MaxDL int
	// ExtendedAddressing enables the one-byte address prefix on every
	// frame; SourceAddr/TargetAddr are only meaningful when this is true.
	ExtendedAddressing bool
	SourceAddr         byte
	TargetAddr         byte
	// ZeroPadding pads every outgoing frame to FrameBytes on the wire.
	ZeroPadding bool
	// FCSendOverflow, when set, makes the receiver answer an oversized FF
	// with an explicit FC Overflow frame before raising rx_error; when
	// unset, the FF is dropped and only rx_error is raised (§4.4's "if
	// oversized and FC_SEND_OVERFLOW configured, send FC OVERFLOW").
	FCSendOverflow bool
}

// Option configures a Config at construction.
type Option func(*Config)

// WithSTmin sets the minimum separation time this stack requests of its
// peer between consecutive frames.
func WithSTmin(d time.Duration) Option {
	return func(c *Config) { c.STmin = d }
}

// WithBlockSize sets the number of CFs requested per FC window. 0 means
// unlimited (a single FC covers the whole transfer).
func WithBlockSize(bs byte) Option {
	return func(c *Config) { c.BlockSize = bs }
}

// WithMaxDL caps the largest message this stack will segment or reassemble.
func WithMaxDL(n int) Option {
	return func(c *Config) { c.MaxDL = n }
}

// WithExtendedAddressing enables one-byte addressing with the given local
// source and remote target addresses.
func WithExtendedAddressing(source, target byte) Option {
	return func(c *Config) {
		c.ExtendedAddressing = true
		c.SourceAddr = source
		c.TargetAddr = target
	}
}

// WithZeroPadding pads every outgoing frame to FrameBytes.
func WithZeroPadding() Option {
	return func(c *Config) { c.ZeroPadding = true }
}

// WithOverflowNotify makes the receiver answer an oversized First Frame
// with an FC Overflow frame in addition to raising rx_error.
func WithOverflowNotify() Option {
	return func(c *Config) { c.FCSendOverflow = true }
}

// defaultConfig returns the Config in effect before any Option is applied.
func defaultConfig() Config {
	return Config{
		STmin:     0,
		BlockSize: 0,
		MaxDL:     MaxDL,
	}
}

func newConfig(opts ...Option) Config {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.MaxDL <= 0 || cfg.MaxDL > MaxDL {
		cfg.MaxDL = MaxDL
	}
	return cfg
}

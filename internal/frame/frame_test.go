package frame

import (
	"errors"
	"testing"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name     string
		width    int
		height   int
		channels int
		wantErr  error
	}{
		{"rgba", 4, 3, 4, nil},
		{"scalar", 7, 5, 1, nil},
		{"1x1 minimum", 1, 1, 1, nil},
		{"zero width", 0, 3, 4, ErrInvalidDimensions},
		{"zero height", 4, 0, 4, ErrInvalidDimensions},
		{"negative width", -1, 3, 4, ErrInvalidDimensions},
		{"zero channels", 4, 3, 0, ErrInvalidChannels},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := New[uint16](tt.width, tt.height, tt.channels)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("New() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if got, want := len(f.Pix), tt.width*tt.height*tt.channels; got != want {
				t.Errorf("len(Pix) = %d, want %d", got, want)
			}
			if f.RowStride() != tt.width*tt.channels {
				t.Errorf("RowStride() = %d, want %d", f.RowStride(), tt.width*tt.channels)
			}
		})
	}
}

func TestFromRaw(t *testing.T) {
	tests := []struct {
		name       string
		dataLen    int
		width      int
		height     int
		stride     int
		wantErr    error
		wantStride int
	}{
		{"packed", 24, 3, 2, 0, nil, 12},
		{"explicit packed stride", 24, 3, 2, 12, nil, 12},
		{"padded", 32, 3, 2, 16, nil, 16},
		{"stride too small", 32, 3, 2, 8, ErrInvalidStride, 0},
		{"truncated", 23, 3, 2, 0, ErrDataTooSmall, 0},
		{"truncated padded", 31, 3, 2, 16, ErrDataTooSmall, 0},
		{"zero height", 24, 3, 0, 0, ErrInvalidDimensions, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, err := FromRaw(make([]uint8, tt.dataLen), tt.width, tt.height, 4, tt.stride)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("FromRaw() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}
			if f.RowStride() != tt.wantStride {
				t.Errorf("RowStride() = %d, want %d", f.RowStride(), tt.wantStride)
			}
		})
	}
}

func TestFrameOffset(t *testing.T) {
	f, _ := FromRaw(make([]uint16, 40), 3, 2, 4, 20)
	if got := f.Offset(2, 1); got != 28 {
		t.Errorf("Offset(2,1) = %d, want 28", got)
	}
	if got := len(f.Row(1)); got != 12 {
		t.Errorf("len(Row(1)) = %d, want 12", got)
	}
}

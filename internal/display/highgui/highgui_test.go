package highgui

import (
	"reflect"
	"testing"

	"v4l2view/internal/display"
)

func TestDrainKeys(t *testing.T) {
	tests := []struct {
		name    string
		pressed []int
		want    []display.Event
	}{
		{name: "idle", pressed: nil, want: nil},
		{
			name:    "several keys",
			pressed: []int{'a', display.KeyEscape},
			want: []display.Event{
				{Kind: display.EventKey, Key: 'a'},
				{Kind: display.EventKey, Key: display.KeyEscape},
			},
		},
		{
			name:    "modifier bits",
			pressed: []int{0x100000 | 'q'},
			want:    []display.Event{{Kind: display.EventKey, Key: 'q'}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			queue := append([]int(nil), tt.pressed...)
			calls := 0
			waitKey := func() int {
				calls++
				if len(queue) == 0 {
					return -1
				}
				k := queue[0]
				queue = queue[1:]
				return k
			}

			got := drainKeys(waitKey)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("events = %v, want %v", got, tt.want)
			}
			if calls != len(tt.pressed)+1 {
				t.Errorf("waitKey called %d times, want %d", calls, len(tt.pressed)+1)
			}
		})
	}
}

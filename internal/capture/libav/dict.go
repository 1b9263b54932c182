package libav

//#cgo pkg-config: libavutil
//#include <stdlib.h>
//#include <libavutil/dict.h>
import "C"
import (
	"fmt"
	"unsafe"

	"github.com/giorgisio/goav/avformat"
	"github.com/giorgisio/goav/avutil"

	"v4l2view/internal/capture"
)

// newOptions builds the AVDictionary handed to avformat_open_input. The caller
// frees it with freeOptions.
func newOptions(opts []capture.Option) (*avformat.Dictionary, error) {
	var d *avformat.Dictionary
	for _, opt := range opts {
		if err := setOption(&d, opt.Key, opt.Value); err != nil {
			freeOptions(&d)
			return nil, err
		}
	}
	return d, nil
}

func setOption(d **avformat.Dictionary, key, value string) error {
	k := C.CString(key)
	defer C.free(unsafe.Pointer(k))
	v := C.CString(value)
	defer C.free(unsafe.Pointer(v))

	if ret := C.av_dict_set((**C.AVDictionary)(unsafe.Pointer(d)), k, v, 0); ret < 0 {
		return fmt.Errorf("av_dict_set %s=%s: %v", key, value, avutil.ErrorFromCode(int(ret)))
	}
	return nil
}

// freeOptions releases d and sets it to nil. Entries avformat_open_input
// consumed are already gone; the rest are the options it did not recognize.
func freeOptions(d **avformat.Dictionary) {
	C.av_dict_free((**C.AVDictionary)(unsafe.Pointer(d)))
}

// unusedOptions lists the keys left in d after avformat_open_input.
func unusedOptions(d *avformat.Dictionary) []string {
	var keys []string
	var e *C.AVDictionaryEntry
	empty := C.CString("")
	defer C.free(unsafe.Pointer(empty))
	for {
		e = C.av_dict_get((*C.AVDictionary)(unsafe.Pointer(d)), empty, e, C.AV_DICT_IGNORE_SUFFIX)
		if e == nil {
			return keys
		}
		keys = append(keys, C.GoString(e.key))
	}
}

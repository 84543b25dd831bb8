// Command libgridframe builds the gridframe shared library:
//
//	go build -buildmode=c-shared -o libgridframe.so ./cmd/libgridframe
//
// Networks are referenced by opaque handles. Functions that can fail take a
// char** error out-parameter; a non-NULL error must be released with
// gf_free_string. Dataframes returned by gf_create_dataframe and
// gf_get_series_metadata are owned by the caller until passed to the
// matching free function.
//
// The configuration file named by GRIDFRAME_CONFIG, when set, provides the
// per-unit defaults, dataframe limits and logging settings.
package main

/*
#cgo CFLAGS: -I${SRCDIR}/../../pkg/native
#include <stdlib.h>
#include "gridframe.h"
*/
import "C"

import (
	"context"
	"fmt"
	"os"
	"runtime/cgo"
	"unsafe"

	"go.uber.org/zap"

	"github.com/gridframe/gridframe/internal/session"
	"github.com/gridframe/gridframe/pkg/config"
	"github.com/gridframe/gridframe/pkg/dataframe"
	"github.com/gridframe/gridframe/pkg/errors"
	"github.com/gridframe/gridframe/pkg/logger"
	"github.com/gridframe/gridframe/pkg/mappers"
	"github.com/gridframe/gridframe/pkg/native"
)

func main() {}

func loadConfig() (*config.Config, error) {
	cfg := config.NewDefault()
	if path := os.Getenv("GRIDFRAME_CONFIG"); path != "" {
		loaded, err := config.LoadFile(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := logger.Init(logger.Config{
		Level:    cfg.Observability.LogLevel,
		Encoding: cfg.Observability.LogEncoding,
	}); err != nil {
		return nil, err
	}
	return cfg, nil
}

// call runs fn, turning a returned error or a panic into a C string
// stored in *errOut.
func call(errOut **C.char, fn func() error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			ok = false
			setError(errOut, errors.New(errors.ErrorTypeInternal, fmt.Sprint(r)))
		}
	}()
	if err := fn(); err != nil {
		setError(errOut, err)
		return false
	}
	return true
}

func setError(errOut **C.char, err error) {
	logger.Get().Debug("native call failed", logger.ErrorFields(err)...)
	if errOut != nil {
		*errOut = C.CString(err.Error())
	}
}

func sessionFor(h C.uintptr_t) (*session.Session, error) {
	s, ok := cgo.Handle(h).Value().(*session.Session)
	if !ok {
		return nil, errors.InvalidValue("handle %d is not a network", uint64(h))
	}
	return s, nil
}

//export gf_network_load
func gf_network_load(path *C.char, perUnit C.int, nominalApparentPower C.double, errOut **C.char) C.uintptr_t {
	var handle C.uintptr_t
	call(errOut, func() error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		cfg.Units.PerUnit = perUnit != 0
		if nominalApparentPower > 0 {
			cfg.Units.NominalApparentPower = float64(nominalApparentPower)
		}
		if err := cfg.Validate(); err != nil {
			return err
		}
		s, err := session.Open(C.GoString(path), cfg)
		if err != nil {
			return err
		}
		handle = C.uintptr_t(cgo.NewHandle(s))
		logger.Get().Debug("network loaded", zap.String("path", C.GoString(path)), zap.String(string(logger.NetworkIDKey), s.Network().ID))
		return nil
	})
	return handle
}

//export gf_network_free
func gf_network_free(h C.uintptr_t) {
	if h != 0 {
		cgo.Handle(h).Delete()
	}
}

//export gf_get_series_metadata
func gf_get_series_metadata(elementType C.int32_t, errOut **C.char) *C.gf_dataframe {
	var out *C.gf_dataframe
	call(errOut, func() error {
		et, err := native.ElementTypeCodes.Value(int32(elementType))
		if err != nil {
			return err
		}
		m, err := mappers.For(et)
		if err != nil {
			return err
		}
		p, err := native.MarshalMetadata(m.SeriesMetadata())
		if err != nil {
			return err
		}
		out = (*C.gf_dataframe)(p)
		return nil
	})
	return out
}

//export gf_free_series_metadata
func gf_free_series_metadata(df *C.gf_dataframe) {
	if df != nil {
		native.FreeMetadata(unsafe.Pointer(df))
	}
}

//export gf_create_dataframe
func gf_create_dataframe(network C.uintptr_t, elementType, filterMode C.int32_t, attributes **C.char, attributeCount C.int32_t,
	selection *C.gf_dataframe, errOut **C.char) *C.gf_dataframe {
	var out *C.gf_dataframe
	call(errOut, func() error {
		s, err := sessionFor(network)
		if err != nil {
			return err
		}
		et, err := native.ElementTypeCodes.Value(int32(elementType))
		if err != nil {
			return err
		}
		mode, err := native.FilterModeCodes.Value(int32(filterMode))
		if err != nil {
			return err
		}
		f := dataframe.Filter{Mode: mode}
		if attributeCount > 0 {
			for _, a := range unsafe.Slice(attributes, int(attributeCount)) {
				f.Attributes = append(f.Attributes, C.GoString(a))
			}
		}
		if selection != nil {
			view, err := native.NewView(unsafe.Pointer(selection))
			if err != nil {
				return err
			}
			f = f.WithSelection(view)
		}

		h := native.NewHandler()
		if _, err := s.Get(context.Background(), et, f, h); err != nil {
			h.Discard()
			return err
		}
		df, err := h.Dataframe()
		if err != nil {
			return err
		}
		p, err := df.Detach()
		if err != nil {
			return err
		}
		out = (*C.gf_dataframe)(p)
		return nil
	})
	return out
}

//export gf_free_dataframe
func gf_free_dataframe(df *C.gf_dataframe) {
	native.FreeDataframe(unsafe.Pointer(df))
}

// gf_update_dataframe returns the number of rows applied, or -1 on error.
//
//export gf_update_dataframe
func gf_update_dataframe(network C.uintptr_t, elementType C.int32_t, df *C.gf_dataframe, errOut **C.char) C.int64_t {
	rows := -1
	call(errOut, func() error {
		s, err := sessionFor(network)
		if err != nil {
			return err
		}
		et, err := native.ElementTypeCodes.Value(int32(elementType))
		if err != nil {
			return err
		}
		view, err := native.NewView(unsafe.Pointer(df))
		if err != nil {
			return err
		}
		n, err := s.Update(context.Background(), et, view)
		if err != nil {
			return err
		}
		rows = n
		return nil
	})
	return C.int64_t(rows)
}

//export gf_network_save
func gf_network_save(network C.uintptr_t, path *C.char, errOut **C.char) C.int {
	if call(errOut, func() error {
		s, err := sessionFor(network)
		if err != nil {
			return err
		}
		return s.Save(C.GoString(path))
	}) {
		return 0
	}
	return -1
}

//export gf_free_string
func gf_free_string(s *C.char) {
	C.free(unsafe.Pointer(s))
}

func uintptrOf(h cgo.Handle) C.uintptr_t { return C.uintptr_t(h) }

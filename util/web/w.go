// Copyright 2019 eBay Inc.
// Primary authors: Simon Fell, Diego Ongaro,
//                  Raymond Kroeker, and Sathish Kandasamy.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package web aids in writing HTTP servers.
package web

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

// WriteError will write a textual error response to the supplied ResponseWriter with the
// supplied HTTP StatusCode
func WriteError(w http.ResponseWriter, statusCode int, formatMsg string, params ...interface{}) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(statusCode)
	fmt.Fprintf(w, formatMsg, params...)
	io.WriteString(w, "\n")
}

// WriteJSON writes val as an indented JSON document with the given status
// code.
func WriteJSON(w http.ResponseWriter, statusCode int, val interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.Encode(val)
}

// HTTPWriter defines a way for a type to control how its returned as a HTTP response
// values passed to Write that implement this interface will have their HTTPWrite function
// called to generate the HTTP Response
type HTTPWriter interface {
	HTTPWrite(w http.ResponseWriter)
}

// StatusError is an error that should be reported with a particular status
// code.
type StatusError struct {
	Code int
	Err  error
}

// Errorf returns a StatusError with a formatted message. It wraps any %w
// argument.
func Errorf(statusCode int, format string, args ...interface{}) *StatusError {
	return &StatusError{Code: statusCode, Err: fmt.Errorf(format, args...)}
}

func (e *StatusError) Error() string {
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *StatusError) Unwrap() error {
	return e.Err
}

// HTTPWrite implements HTTPWriter.
func (e *StatusError) HTTPWrite(w http.ResponseWriter) {
	WriteError(w, e.Code, "%v", e.Err)
}

// Write is a helper function to write out a http response. It'll write the first non-nil
// val in the val list (so you can do things like web.Write(w, err, foo)) and have err
// returned if it was set.
func Write(w http.ResponseWriter, vals ...interface{}) {
	for _, val := range vals {
		if val != nil {
			switch tv := val.(type) {
			case []byte:
				w.Write(tv)
			case string:
				w.Header().Set("Content-Type", "text/plain; charset=utf-8")
				io.WriteString(w, tv)
			case HTTPWriter:
				tv.HTTPWrite(w)
			case error:
				WriteError(w, http.StatusInternalServerError, "Unexpected error: %s", tv)
			default:
				WriteJSON(w, http.StatusOK, tv)
			}
			return
		}
	}
	w.WriteHeader(http.StatusNoContent)
}

// Copyright 2022 The Stamp Contributors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//      http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package stamp

import (
	"bytes"
	"io"
	"os"
)

// DataSource provides a fresh readable view of the timestamped document for each
// digesting pass. Every Open must yield the same byte sequence from the start of
// the document; the stream is consumed sequentially and never rewound.
type DataSource interface {
	Open() (io.ReadCloser, error)
}

// FileSource reads the document from a file on disk.
type FileSource struct {
	Path string
}

func (fs FileSource) Open() (io.ReadCloser, error) {
	return os.Open(fs.Path)
}

// BytesSource serves the document from memory.
type BytesSource []byte

func (bs BytesSource) Open() (io.ReadCloser, error) {
	return io.NopCloser(bytes.NewReader(bs)), nil
}

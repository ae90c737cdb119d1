// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

//go:build windows

package engine

import (
	"gitlab.com/tozd/go/errors"
	"golang.org/x/sys/windows"
)

// applyAttributes adds and removes Windows file attribute bits on the
// destination file.
func applyAttributes(path, add, remove string) error {
	if add == "" && remove == "" {
		return nil
	}

	p, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return errors.Errorf("encoding path: %w", err)
	}

	attrs, err := windows.GetFileAttributes(p)
	if err != nil {
		return errors.Errorf("getting file attributes: %w", err)
	}

	attrs |= attrMask(add)
	attrs &^= attrMask(remove)

	if err := windows.SetFileAttributes(p, attrs); err != nil {
		return errors.Errorf("setting file attributes: %w", err)
	}
	return nil
}

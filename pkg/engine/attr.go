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

package engine

// Attribute letters map onto the Windows file attribute bitmask.
// Unknown letters are ignored, matching the loose parsing of the
// classic switch syntax.
const (
	attrReadOnly   = 0x00000001 // R
	attrHidden     = 0x00000002 // H
	attrSystem     = 0x00000004 // S
	attrArchive    = 0x00000020 // A
	attrNormal     = 0x00000080 // N
	attrCompressed = 0x00000800 // C
)

// attrMask converts a letter string (e.g. "RAH") into a bitmask
func attrMask(letters string) uint32 {
	var mask uint32
	for _, c := range letters {
		switch c {
		case 'R', 'r':
			mask |= attrReadOnly
		case 'A', 'a':
			mask |= attrArchive
		case 'S', 's':
			mask |= attrSystem
		case 'H', 'h':
			mask |= attrHidden
		case 'C', 'c':
			mask |= attrCompressed
		case 'N', 'n':
			mask |= attrNormal
		}
	}
	return mask
}

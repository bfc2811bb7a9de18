/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package paginate splits a Markdown document into card pages.
//
// Heights are estimated, never measured: each line is classified by its
// prefix and priced with fixed font-size multipliers and margins that mirror
// the card renderer's CSS. Pages are filled greedily, one whole line at a
// time, so a line (and therefore a heading) is never split across cards.
//
// Everything here is a pure function of its inputs and safe for concurrent use.
package paginate

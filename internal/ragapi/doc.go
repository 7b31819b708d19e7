// Copyright (c) 2025 Dossier Labs
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package ragapi implements the client side of the retrieval-augmented
// generation backend's streaming chat protocol.
//
// The backend answers POST /chat/stream with a text event-stream. Frames are
// separated by blank lines and carry an optional event name plus one or more
// data lines. The payload shapes have drifted over the backend's history, so
// interpretation is deliberately layered: every known variant of the token,
// contexts, and done payloads is accepted, and unrecognized frames are
// dropped without failing the stream.
package ragapi

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package translation runs background translation jobs.
//
// A job copies one document's primary-language content into a target
// language via a [Translator] implementation (machine translation,
// an LLM gateway, or a human handoff stub). Jobs are deduplicated by
// (group, document, target language): enqueueing while an equivalent
// job is pending or running returns a conflict receipt instead of a
// second job, which is what the editor surfaces as "translation
// already in progress".
//
// A finished job writes the new language through the document store's
// insert-only path. If an editor manually created the translation
// while the job ran, the insert loses cleanly and the job completes
// without touching the editor's work.
package translation

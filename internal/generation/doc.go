// Package generation provides interfaces and error types for interacting
// with external AI services: LLM text generation (Gemini) and media
// generation (image, audio, video). It is the boundary between the
// orchestration services and provider SDKs, so the application can compose
// content pipelines without coupling to specific external services.
package generation

// Package gemini provides an implementation of the generation.TextGenerator
// interface that uses Google's Gemini API for text and structured content
// generation.
//
// This package is an infrastructure adapter in the hexagonal architecture,
// connecting the application's content pipelines to Google's external Gemini
// AI service. It translates between the application's generation requests and
// the Gemini API without exposing the details of the external service to the
// core application.
//
// Key components:
//
// 1. Generator:
//   - Implements the generation.TextGenerator interface
//   - Handles communication with the Gemini API
//   - Supports free-form text and schema-constrained JSON output
//
// 2. Error Handling:
//   - Implements retry logic with exponential backoff for transient errors
//   - Categorizes and translates API errors to application-specific errors
//   - Surfaces quota and billing rejections as LimitExceededError so the
//     provider's status code and counters reach the client
//   - Handles content filtering and safety measures
//
// The package depends on Google's genai client library for communicating
// with the Gemini API, and handles authentication, request formatting, and
// response processing according to Google's API specifications.
package gemini

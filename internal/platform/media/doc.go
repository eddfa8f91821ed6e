// Package media implements the image, audio, and video generation
// collaborators behind the story and podcast pipelines. Binary payloads are
// written to a local media directory; only URL references travel through
// task results.
package media

// Package service contains the application-specific use cases and business
// logic. It orchestrates the content generation pipelines (blog research,
// outlines, full posts, story videos, podcast episodes) by composing task
// executor stages over the generation interfaces, the TTL cache, and the
// completion event stream.
//
// The service package implements the application layer in the clean architecture,
// containing use cases that coordinate the flow of data between external interfaces
// (the HTTP API) and the domain layer. It abstracts away infrastructure
// details while orchestrating domain entities to fulfill business requirements.
//
// Key components:
//
// 1. Pipeline Services:
//   - BlogService: keyword research, outline planning, full content generation
//   - StoryService: premise, scene outline, images, narration, composed video
//   - PodcastService: script writing and audio synthesis
//
// 2. Side Paths:
//   - AssetTracker consumes completion events and persists produced content;
//     its failures are logged and never affect the producing task
//
// 3. Dependency Management:
//   - Services receive dependencies through constructor injection
//   - Core dependencies include generators, the cache, the task executor,
//     and the event emitter
//
// The service layer depends on domain entities and collaborator interfaces
// (generation, store, events), but never on specific infrastructure
// implementations, maintaining the Dependency Inversion Principle.
package service

// Package shellevents runs configured external commands in response to
// playback and connection events.
//
// A Dispatcher registers as both a player.PlaybackListener and a
// player.ConnectionListener. For every callback it builds the event's
// environment variables and hands the configured command to the execution
// gateway, which:
//   - does nothing when the configuration is disabled or the command is blank
//   - runs the command directly (whitespace-split, no shell) or through
//     /bin/bash -c when ExecuteWithBash is set
//   - adds the event variables on top of the parent environment
//   - blocks until the process exits and logs the exit code
//
// Failures are logged and never returned to the event source, so a broken
// hook cannot disturb playback. There is no timeout: a hanging command stalls
// the delivering goroutine until it exits.
//
// Environment per event:
//
//	context_changed       CONTEXT_URI
//	track_changed         TRACK_URI NAME ARTIST ALBUM DURATION IS_USER
//	playback_paused       POSITION
//	playback_resumed      POSITION
//	track_seeked          POSITION
//	metadata_available    TRACK_URI NAME ARTIST ALBUM DURATION
//	volume_changed        VOLUME (0-100)
//
// playback_halt_state_changed never runs a command.
package shellevents

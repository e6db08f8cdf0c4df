// Package config loads and watches the benchmark driver configuration file
// (bench.yaml).
//
// Top-level types:
//   - Config{Bench} — full config tree parsed from YAML
//   - BenchConfig — region or bounds, width, height, max_iter, runs, methods,
//     report_path, image_path, palette, viewer
//   - ViewerConfig — endpoint, buffer_size, auth; where finished reports are
//     shipped
//   - AuthConfig — mode (apikey|none), header, key_env; Key() resolves the key
//     from the environment
//
// Load(path) reads the YAML file, applies defaults (classic bounds, 1024×1024,
// 100 iterations, 3 runs, both methods, hsv palette), resolves a named region
// into bounds, then validates every field.
//
// Watch(ctx, path, onChange) uses fsnotify to detect file changes and calls
// onChange with the newly parsed Config. Atomic saves (rename then create) are
// handled by re-adding the watch after every event.
package config

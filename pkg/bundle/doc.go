// Package bundle produces an offline-installable dependency bundle.
//
// A bundle is a directory holding:
//
//   - package archives fetched by the installer ("pip download -d <dir> <pkg>")
//   - a manifest listing one package name per line (requirements.txt)
//   - a Windows batch script and a POSIX shell script that install from the
//     directory without contacting an index, then wait for acknowledgment
//   - a JSON report describing the run (bundle.json)
//
// Downloads run one package at a time through a [Downloader]. Every exit
// status is inspected; a failed package is recorded in its [Result] and the
// remaining packages are still attempted. Nothing is retried or rolled back,
// so a bundle with failures is partial: [Bundle.Failed] lists what is
// missing.
package bundle

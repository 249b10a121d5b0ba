package preflight

import (
	"context"
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"packhub/internal/packcache"
	"packhub/internal/trainingpack"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckPackCache opens the cache database, which also verifies its schema
// version, and reports how many packs it holds.
func CheckPackCache(ctx context.Context, path string) Result {
	const name = "Pack cache"

	cache, err := packcache.Open(ctx, path, nil)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	defer cache.Close()

	count, err := cache.Count(ctx)
	if err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%d packs)", path, count)}
}

// CheckDecodeMode verifies the configured overrun policy is recognised.
func CheckDecodeMode(value string) Result {
	const name = "Decode mode"

	mode, err := trainingpack.ParseMode(value)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: mode.String()}
}

package cmd

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/pkg/errors"
	"github.com/smira/commander"
	"github.com/smira/flag"

	"github.com/wpkg-go/wpkg/archive"
	"github.com/wpkg-go/wpkg/utils"
)

func makeCmdMd5sums() *commander.Command {
	return &commander.Command{
		UsageLine: "md5sums <archive>",
		Short:     "print the md5sums control member of an archive",
		Run:       aptlyMd5sums,
		Flag:      *flag.NewFlagSet("wpkg-md5sums", flag.ExitOnError),
	}
}

func makeCmdMd5sumsCheck() *commander.Command {
	return &commander.Command{
		UsageLine: "md5sums-check <archive>",
		Short:     "verify an archive's data files against its md5sums member",
		Run:       aptlyMd5sumsCheck,
		Flag:      *flag.NewFlagSet("wpkg-md5sums-check", flag.ExitOnError),
	}
}

func parseMd5sumsMember(body []byte) map[string]string {
	sums := make(map[string]string)
	for _, line := range strings.Split(string(body), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		fields := strings.SplitN(line, "  ", 2)
		if len(fields) != 2 {
			fields = strings.Fields(line)
			if len(fields) != 2 {
				continue
			}
		}
		sums["/"+strings.TrimPrefix(strings.TrimPrefix(fields[1], "./"), "/")] = fields[0]
	}
	return sums
}

func aptlyMd5sums(cmd *commander.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("md5sums: exactly one archive path is required")
	}

	body, err := archive.NewReader(args[0]).ControlMember("md5sums")
	if err != nil {
		return err
	}
	if body == nil {
		return errors.Errorf("md5sums: %s has no md5sums control member", args[0])
	}
	_, err = os.Stdout.Write(body)
	return err
}

func aptlyMd5sumsCheck(cmd *commander.Command, args []string) error {
	if len(args) != 1 {
		return errors.New("md5sums-check: exactly one archive path is required")
	}
	archivePath := args[0]

	body, err := archive.NewReader(archivePath).ControlMember("md5sums")
	if err != nil {
		return err
	}
	if body == nil {
		return errors.Errorf("md5sums-check: %s has no md5sums control member", archivePath)
	}
	want := parseMd5sumsMember(body)

	stageDir, err := os.MkdirTemp("", "wpkg-md5check-")
	if err != nil {
		return err
	}
	defer os.RemoveAll(stageDir)

	reader := archive.NewReader(archivePath)
	err = reader.ExtractDataTo(stageDir, func(f archive.File, content io.Reader) error {
		dest := filepath.Join(stageDir, filepath.FromSlash(f.Name))
		if f.IsDir() || f.IsSymlink() {
			return os.MkdirAll(filepath.Dir(dest), 0755)
		}
		if err := os.MkdirAll(filepath.Dir(dest), 0755); err != nil {
			return err
		}
		out, err := os.OpenFile(dest, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, os.FileMode(f.Mode))
		if err != nil {
			return err
		}
		defer out.Close()
		_, err = io.Copy(out, content)
		return err
	})
	if err != nil {
		return err
	}

	var mismatches []string
	for path, wantSum := range want {
		got, err := utils.ChecksumsForFile(stageDir + path)
		if err != nil {
			mismatches = append(mismatches, path+": missing from archive data")
			continue
		}
		if got.MD5 != wantSum {
			mismatches = append(mismatches, path+": checksum mismatch")
		}
	}

	if len(mismatches) > 0 {
		return errors.Errorf("md5sums-check: %s", strings.Join(mismatches, "; "))
	}
	fmt.Printf("%s: all %d file(s) match\n", archivePath, len(want))
	return nil
}

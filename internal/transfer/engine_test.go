package transfer

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/eugeniofciuvasile/ssh-x-transfer/internal/ssh"
)

func testOptions(t *testing.T) Options {
	return Options{
		BufferSize:    4096,
		RemoteTempDir: t.TempDir(),
		LocalTempDir:  t.TempDir(),
	}
}

func TestUploadFilesCancelledOnSecondFile(t *testing.T) {
	session := connectedSession(t)
	engine := NewEngine(session, testOptions(t), zerolog.Nop(), nil)

	local := t.TempDir()
	writeFiles(t, local, map[string]string{
		"f1.txt": "first file",
		"f2.bin": strings.Repeat("x", 256*1024),
		"f3.txt": "never sent",
	})
	remote := filepath.Join(t.TempDir(), "dest")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	rec := &recorder{}
	onSecond := false
	rec.hook = func(ev Event) {
		if ev.Type == EventStatus && ev.Status == "Uploading: f2.bin" {
			onSecond = true
		}
		if onSecond && ev.Type == EventProgress {
			cancel()
		}
	}

	job := NewUploadFiles([]string{
		filepath.Join(local, "f1.txt"),
		filepath.Join(local, "f2.bin"),
		filepath.Join(local, "f3.txt"),
	}, remote)
	result := engine.Run(ctx, job, rec.emit)

	if result.OK {
		t.Fatal("Expected the job to fail")
	}
	if !result.Cancelled || !errors.Is(result.Err, ErrCancelled) {
		t.Errorf("Expected cancelled result, got %+v", result)
	}
	if result.Message != "Upload failed: cancelled" {
		t.Errorf("Expected message %q, got %q", "Upload failed: cancelled", result.Message)
	}

	got, err := os.ReadFile(filepath.Join(remote, "f1.txt"))
	if err != nil || string(got) != "first file" {
		t.Errorf("Expected f1.txt to be uploaded intact, got %q (%v)", got, err)
	}
	if _, err := os.Stat(filepath.Join(remote, "f3.txt")); !os.IsNotExist(err) {
		t.Error("Expected f3.txt never to be attempted")
	}
	for _, s := range rec.statuses() {
		if strings.Contains(s, "f3.txt") {
			t.Errorf("Expected no status for f3.txt, got %q", s)
		}
	}

	events := rec.all()
	last := events[len(events)-1]
	if last.Type != EventFinished || last.Result == nil || last.Result.Message != result.Message {
		t.Errorf("Expected finished event last, got %+v", last)
	}
}

func TestFolderRoundTrip(t *testing.T) {
	session := connectedSession(t)
	opts := testOptions(t)
	engine := NewEngine(session, opts, zerolog.Nop(), nil)

	src := filepath.Join(t.TempDir(), "project")
	files := map[string]string{
		"README.md":           "# project\n",
		"cmd/app/main.go":     "package main\n\nfunc main() {}\n",
		"data/blob.bin":       strings.Repeat("\x00\x01\x02\xff", 50000),
		"dir with space/a b":  "spaced",
		"quote's/inside.txt":  "quoted",
		"deep/er/than/you/go": "deep",
	}
	writeFiles(t, src, files)

	remoteDir := filepath.Join(t.TempDir(), "remote", "target dir")
	up := engine.Run(context.Background(), NewUploadFolder(src, remoteDir, true), nil)
	if !up.OK {
		t.Fatalf("Upload folder failed: %s", up.Message)
	}
	if up.Message != "Folder upload completed." {
		t.Errorf("Expected %q, got %q", "Folder upload completed.", up.Message)
	}
	if _, err := os.Stat(filepath.Join(remoteDir, "project.tar.gz")); !os.IsNotExist(err) {
		t.Error("Expected remote archive to be removed after extraction")
	}
	if names := dirNames(t, opts.LocalTempDir); len(names) != 0 {
		t.Errorf("Expected local temp archive to be removed, found %v", names)
	}

	localDest := filepath.Join(t.TempDir(), "downloads")
	down := engine.Run(context.Background(), NewDownloadFolder(filepath.Join(remoteDir, "project"), localDest, true), nil)
	if !down.OK {
		t.Fatalf("Download folder failed: %s", down.Message)
	}
	if down.Message != "Folder download completed." {
		t.Errorf("Expected %q, got %q", "Folder download completed.", down.Message)
	}

	want := readTree(t, src)
	got := readTree(t, filepath.Join(localDest, "project"))
	if len(got) != len(want) {
		t.Errorf("Expected %d files, got %d", len(want), len(got))
	}
	for name, content := range want {
		if got[name] != content {
			t.Errorf("Content mismatch for %s", name)
		}
	}
	if names := dirNames(t, localDest); len(names) != 1 || names[0] != "project" {
		t.Errorf("Expected only the extracted folder in destination, got %v", names)
	}
	if names := dirNames(t, opts.RemoteTempDir); len(names) != 0 {
		t.Errorf("Expected remote temp archive to be removed, found %v", names)
	}
}

func TestDownloadFolderKeepsArchiveWithoutExtract(t *testing.T) {
	session := connectedSession(t)
	engine := NewEngine(session, testOptions(t), zerolog.Nop(), nil)

	remote := filepath.Join(t.TempDir(), "logs")
	writeFiles(t, remote, map[string]string{"today.log": "ok"})

	localDest := t.TempDir()
	result := engine.Run(context.Background(), NewDownloadFolder(remote, localDest, false), nil)
	if !result.OK {
		t.Fatalf("Download folder failed: %s", result.Message)
	}
	names := dirNames(t, localDest)
	if len(names) != 1 || !strings.HasPrefix(names[0], "logs_") || !strings.HasSuffix(names[0], ".tar.gz") {
		t.Errorf("Expected a single logs_<stamp>.tar.gz, got %v", names)
	}
}

func TestProgressMonotonicAndComplete(t *testing.T) {
	session := connectedSession(t)
	engine := NewEngine(session, testOptions(t), zerolog.Nop(), nil)

	local := t.TempDir()
	writeFiles(t, local, map[string]string{
		"a.bin": strings.Repeat("a", 100*1024),
		"b.bin": strings.Repeat("b", 40*1024),
	})

	rec := &recorder{}
	result := engine.Run(context.Background(), NewUploadFiles([]string{
		filepath.Join(local, "a.bin"),
		filepath.Join(local, "b.bin"),
	}, t.TempDir()), rec.emit)
	if !result.OK {
		t.Fatalf("Upload failed: %s", result.Message)
	}
	if result.Bytes != 140*1024 {
		t.Errorf("Expected %d bytes, got %d", 140*1024, result.Bytes)
	}

	// Split progress by file: each file starts with a status line.
	var perFile [][]int
	for _, ev := range rec.all() {
		switch ev.Type {
		case EventStatus:
			if strings.HasPrefix(ev.Status, "Uploading: ") {
				perFile = append(perFile, nil)
			}
		case EventProgress:
			if len(perFile) == 0 {
				t.Fatal("Expected a status line before progress")
			}
			perFile[len(perFile)-1] = append(perFile[len(perFile)-1], ev.Percent)
		}
	}

	if len(perFile) != 2 {
		t.Fatalf("Expected progress for 2 files, got %d", len(perFile))
	}
	for i, values := range perFile {
		if values[0] != 0 {
			t.Errorf("File %d: expected progress to start at 0, got %d", i, values[0])
		}
		if values[len(values)-1] != 100 {
			t.Errorf("File %d: expected progress to end at 100, got %d", i, values[len(values)-1])
		}
		for j := 1; j < len(values); j++ {
			if values[j] < values[j-1] || values[j] > 100 {
				t.Errorf("File %d: progress went %d -> %d", i, values[j-1], values[j])
			}
		}
		if len(values) < 4 {
			t.Errorf("File %d: expected intermediate progress, got %v", i, values)
		}
	}
}

func TestDownloadFiles(t *testing.T) {
	session := connectedSession(t)
	engine := NewEngine(session, testOptions(t), zerolog.Nop(), nil)

	remote := t.TempDir()
	writeFiles(t, remote, map[string]string{"one.txt": "1", "two.txt": "22"})
	localDest := filepath.Join(t.TempDir(), "nested", "dest")

	rec := &recorder{}
	result := engine.Run(context.Background(), NewDownloadFiles([]string{
		filepath.Join(remote, "one.txt"),
		filepath.Join(remote, "two.txt") + "/",
	}, localDest), rec.emit)
	if !result.OK {
		t.Fatalf("Download failed: %s", result.Message)
	}
	if result.Message != "Download completed." {
		t.Errorf("Expected %q, got %q", "Download completed.", result.Message)
	}
	got := readTree(t, localDest)
	if got["one.txt"] != "1" || got["two.txt"] != "22" {
		t.Errorf("Unexpected local files: %v", got)
	}
	statuses := rec.statuses()
	want := "[1/2] Downloading -> " + filepath.Join(localDest, "one.txt")
	if len(statuses) == 0 || statuses[0] != want {
		t.Errorf("Expected first status %q, got %v", want, statuses)
	}
}

func TestDownloadMissingFile(t *testing.T) {
	session := connectedSession(t)
	engine := NewEngine(session, testOptions(t), zerolog.Nop(), nil)

	missing := filepath.Join(t.TempDir(), "gone.txt")
	result := engine.Run(context.Background(), NewDownloadFiles([]string{missing}, t.TempDir()), nil)
	if result.OK {
		t.Fatal("Expected failure")
	}
	var ioErr *IOError
	if !errors.As(result.Err, &ioErr) || ioErr.Side != SideRemote {
		t.Errorf("Expected remote IOError, got %v", result.Err)
	}
	if !strings.HasPrefix(result.Message, "Download failed: ") {
		t.Errorf("Expected download failure prefix, got %q", result.Message)
	}
}

func TestDownloadWithoutRemoteSize(t *testing.T) {
	remote := newFakeRemote()
	remote.files["/srv/report.csv"] = []byte("id,total\n1,42\n")
	engine := NewEngine(remote, Options{BufferSize: 4}, zerolog.Nop(), nil)

	local := t.TempDir()
	rec := &recorder{}
	result := engine.Run(context.Background(), NewDownloadFiles([]string{"/srv/report.csv"}, local), rec.emit)
	if !result.OK {
		t.Fatalf("Expected success without a size, got %q", result.Message)
	}

	var percents []int
	for _, ev := range rec.all() {
		if ev.Type == EventProgress {
			percents = append(percents, ev.Percent)
		}
	}
	if len(percents) != 2 || percents[0] != 0 || percents[1] != 100 {
		t.Errorf("Expected progress 0 then 100, got %v", percents)
	}

	got, err := os.ReadFile(filepath.Join(local, "report.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if string(got) != "id,total\n1,42\n" {
		t.Errorf("Expected downloaded content to match, got %q", got)
	}
	if result.Bytes != int64(len(got)) {
		t.Errorf("Expected %d bytes counted, got %d", len(got), result.Bytes)
	}
}

func TestEngineRejectsConcurrentRun(t *testing.T) {
	remote := newFakeRemote()
	remote.createGate = make(chan struct{})
	engine := NewEngine(remote, Options{}, zerolog.Nop(), nil)

	local := t.TempDir()
	writeFiles(t, local, map[string]string{"a.txt": "a", "b.txt": "b"})

	started := make(chan struct{})
	first := &recorder{hook: func(ev Event) {
		if ev.Type == EventProgress && ev.Percent == 0 {
			close(started)
		}
	}}
	done := make(chan Result, 1)
	go func() {
		done <- engine.Run(context.Background(), NewUploadFiles([]string{filepath.Join(local, "a.txt")}, "/up"), first.emit)
	}()
	<-started

	second := &recorder{}
	result := engine.Run(context.Background(), NewUploadFiles([]string{filepath.Join(local, "b.txt")}, "/up"), second.emit)
	if !errors.Is(result.Err, ErrJobInFlight) {
		t.Fatalf("Expected ErrJobInFlight, got %v", result.Err)
	}
	if events := second.all(); len(events) != 1 || events[0].Type != EventFinished {
		t.Errorf("Expected only the finished event, got %+v", events)
	}

	close(remote.createGate)
	if res := <-done; !res.OK {
		t.Fatalf("Expected the first job to succeed, got %q", res.Message)
	}
	if _, ok := remote.files["/up/b.txt"]; ok {
		t.Error("Expected the rejected job to upload nothing")
	}

	// Released after the first job.
	result = engine.Run(context.Background(), NewUploadFiles([]string{filepath.Join(local, "b.txt")}, "/up"), nil)
	if !result.OK {
		t.Errorf("Expected a later job to run, got %q", result.Message)
	}
}

func TestRunNotConnected(t *testing.T) {
	remote := newFakeRemote()
	remote.connected = false
	engine := NewEngine(remote, Options{}, zerolog.Nop(), nil)

	rec := &recorder{}
	result := engine.Run(context.Background(), NewUploadFiles([]string{"/etc/hostname"}, "/tmp"), rec.emit)
	if !errors.Is(result.Err, ssh.ErrNotConnected) {
		t.Fatalf("Expected ErrNotConnected, got %v", result.Err)
	}
	if result.Message != "Upload failed: not connected" {
		t.Errorf("Expected %q, got %q", "Upload failed: not connected", result.Message)
	}
	if events := rec.all(); len(events) != 1 || events[0].Type != EventFinished {
		t.Errorf("Expected only the finished event, got %+v", events)
	}
	if cmds := remote.recordedCommands(); len(cmds) != 0 {
		t.Errorf("Expected no remote side effects, got %v", cmds)
	}
}

func TestRunSelectionErrors(t *testing.T) {
	file := filepath.Join(t.TempDir(), "plain.txt")
	writeFiles(t, filepath.Dir(file), map[string]string{"plain.txt": "x"})

	tests := []struct {
		name string
		job  Job
		want string
	}{
		{"no local files", NewUploadFiles(nil, "/tmp"), "No local files selected."},
		{"blank local files", NewUploadFiles([]string{" "}, "/tmp"), "No local files selected."},
		{"no remote files", NewDownloadFiles(nil, "/tmp"), "No remote files selected."},
		{"folder is a file", NewUploadFolder(file, "/tmp", true), "Selected path is not a folder."},
		{"two folders", Job{Kind: DownloadFolder, Sources: []string{"/a", "/b"}, Destination: "/tmp"}, "Select exactly one remote folder."},
		{"remote root", NewDownloadFolder("/", t.TempDir(), true), "Cannot download the remote root as a folder."},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			remote := newFakeRemote()
			engine := NewEngine(remote, Options{LocalTempDir: t.TempDir()}, zerolog.Nop(), nil)
			result := engine.Run(context.Background(), tt.job, nil)
			if result.OK {
				t.Fatal("Expected failure")
			}
			if !errors.Is(result.Err, ErrInvalidSelection) {
				t.Errorf("Expected ErrInvalidSelection, got %v", result.Err)
			}
			if result.Message != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, result.Message)
			}
		})
	}
}

func TestMkdirFailureFailsJob(t *testing.T) {
	remote := newFakeRemote()
	remote.mkdirErr = &ssh.CommandError{ExitCode: 1, Stderr: "mkdir: cannot create directory '/x': Permission denied\n"}
	engine := NewEngine(remote, Options{}, zerolog.Nop(), nil)

	local := t.TempDir()
	writeFiles(t, local, map[string]string{"a.txt": "a"})

	result := engine.Run(context.Background(), NewUploadFiles([]string{filepath.Join(local, "a.txt")}, "/x"), nil)
	want := "Upload failed: mkdir: cannot create directory '/x': Permission denied"
	if result.Message != want {
		t.Errorf("Expected %q, got %q", want, result.Message)
	}
	if len(remote.files) != 0 {
		t.Errorf("Expected no upload after mkdir failure, got %v", remote.files)
	}
}

func TestUploadFolderRemoteExtractFailure(t *testing.T) {
	remote := newFakeRemote()
	remote.execResult = ssh.CommandResult{ExitCode: 2, Stderr: "tar: boom\n"}
	opts := Options{LocalTempDir: t.TempDir()}
	engine := NewEngine(remote, opts, zerolog.Nop(), nil)

	src := filepath.Join(t.TempDir(), "site")
	writeFiles(t, src, map[string]string{"index.html": "<html>"})

	result := engine.Run(context.Background(), NewUploadFolder(src, "/var/www", true), nil)
	want := "Folder upload failed: remote extract failed: tar: boom"
	if result.Message != want {
		t.Errorf("Expected %q, got %q", want, result.Message)
	}
	var cmdErr *ssh.CommandError
	if !errors.As(result.Err, &cmdErr) || cmdErr.ExitCode != 2 {
		t.Errorf("Expected CommandError with exit 2, got %v", result.Err)
	}
	if _, ok := remote.files["/var/www/site.tar.gz"]; !ok {
		t.Error("Expected archive to be uploaded before extraction")
	}
	if names := dirNames(t, opts.LocalTempDir); len(names) != 0 {
		t.Errorf("Expected local temp archive removed even on failure, found %v", names)
	}

	cmds := remote.recordedCommands()
	wantCmd := ssh.ExtractCommand("/var/www/site.tar.gz", "/var/www")
	if cmds[len(cmds)-1] != wantCmd {
		t.Errorf("Expected last command %q, got %q", wantCmd, cmds[len(cmds)-1])
	}
}

func TestPercent(t *testing.T) {
	tests := []struct {
		sent, total int64
		want        int
	}{
		{0, 100, 0},
		{1, 3, 33},
		{2, 3, 66},
		{3, 3, 100},
		{5, 3, 100},
		{10, 0, 0},
	}
	for _, tt := range tests {
		if got := percent(tt.sent, tt.total); got != tt.want {
			t.Errorf("percent(%d, %d): expected %d, got %d", tt.sent, tt.total, tt.want, got)
		}
	}
}

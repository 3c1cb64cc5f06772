package testing

// WithFiles pre-populates the mock filesystem with files.
// Keys are paths, values are file contents.
func WithFiles(client *MockClient, files map[string]string) {
	for path, content := range files {
		_ = client.GetFS().WriteFile(path, []byte(content))
	}
}

// WithVersion makes `gluster --version` (with or without sudo) report version.
func WithVersion(client *MockClient, version string) {
	client.SetCommandResponse(`^(sudo )?gluster --version$`, CommandResponse{
		Stdout: []byte("glusterfs " + version + "\nRepository revision: git://git.gluster.org/glusterfs.git\n"),
	})
}

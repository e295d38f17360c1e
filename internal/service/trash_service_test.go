package service

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/gravitational/trace"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"docvault/internal/domain"
)

func TestSoftDeleteFolder(t *testing.T) {
	ctx := context.Background()
	town := uuid.New()

	t.Run("cascades over the live subtree", func(t *testing.T) {
		e := newEnv()
		manager := e.state.addUser(domain.RoleManager, town)
		root := e.state.addFolder(town, nil, "root")
		mid := e.state.addFolder(town, &root.ID, "mid")
		leaf := e.state.addFolder(town, &mid.ID, "leaf")
		sibling := e.state.addFolder(town, nil, "sibling")
		rootFile := e.state.addFile(town, root.ID, "a.pdf")
		leafFile := e.state.addFile(town, leaf.ID, "b.pdf")
		siblingFile := e.state.addFile(town, sibling.ID, "c.pdf")

		require.NoError(t, e.trash.SoftDeleteFolder(ctx, principalFor(manager), root.ID))

		for _, id := range []uuid.UUID{root.ID, mid.ID, leaf.ID} {
			assert.True(t, e.state.folders[id].IsDeleted(), "folder %s should be trashed", id)
		}
		assert.True(t, e.state.files[rootFile.ID].IsDeleted())
		assert.True(t, e.state.files[leafFile.ID].IsDeleted())

		// соседняя ветка не затронута
		assert.False(t, e.state.folders[sibling.ID].IsDeleted())
		assert.False(t, e.state.files[siblingFile.ID].IsDeleted())
	})

	t.Run("already trashed descendants stay as they were", func(t *testing.T) {
		e := newEnv()
		manager := e.state.addUser(domain.RoleManager, town)
		root := e.state.addFolder(town, nil, "root")
		mid := e.state.addFolder(town, &root.ID, "mid")
		inner := e.state.addFolder(town, &mid.ID, "inner")
		e.state.trash(mid.ID)

		require.NoError(t, e.trash.SoftDeleteFolder(ctx, principalFor(manager), root.ID))

		assert.True(t, e.state.folders[root.ID].IsDeleted())
		// обход шел только по живым папкам и не спустился сквозь удаленную
		assert.False(t, e.state.folders[inner.ID].IsDeleted())
	})

	t.Run("basic user needs delete permission", func(t *testing.T) {
		e := newEnv()
		manager := e.state.addUser(domain.RoleManager, town)
		basic := e.state.addUser(domain.RoleBasic, town)
		folder := e.state.addFolder(town, nil, "docs")

		err := e.trash.SoftDeleteFolder(ctx, principalFor(basic), folder.ID)
		assert.True(t, trace.IsAccessDenied(err))

		_, err = e.perms.Grant(ctx, principalFor(manager), GrantRequest{
			UserID: basic.ID, FolderID: &folder.ID, Type: domain.PermissionDelete,
		})
		require.NoError(t, err)

		require.NoError(t, e.trash.SoftDeleteFolder(ctx, principalFor(basic), folder.ID))
	})

	t.Run("missing or foreign folder", func(t *testing.T) {
		e := newEnv()
		manager := e.state.addUser(domain.RoleManager, town)
		foreign := e.state.addFolder(uuid.New(), nil, "elsewhere")

		err := e.trash.SoftDeleteFolder(ctx, principalFor(manager), uuid.New())
		assert.True(t, trace.IsNotFound(err))

		err = e.trash.SoftDeleteFolder(ctx, principalFor(manager), foreign.ID)
		assert.True(t, trace.IsNotFound(err))
	})
}

func TestRestoreFolder(t *testing.T) {
	ctx := context.Background()
	town := uuid.New()

	t.Run("restores the trashed subtree", func(t *testing.T) {
		e := newEnv()
		manager := e.state.addUser(domain.RoleManager, town)
		root := e.state.addFolder(town, nil, "root")
		mid := e.state.addFolder(town, &root.ID, "mid")
		leaf := e.state.addFolder(town, &mid.ID, "leaf")
		file := e.state.addFile(town, leaf.ID, "a.pdf")

		require.NoError(t, e.trash.SoftDeleteFolder(ctx, principalFor(manager), root.ID))
		require.NoError(t, e.trash.RestoreFolder(ctx, principalFor(manager), root.ID))

		for _, id := range []uuid.UUID{root.ID, mid.ID, leaf.ID} {
			assert.False(t, e.state.folders[id].IsDeleted())
		}
		assert.False(t, e.state.files[file.ID].IsDeleted())
	})

	t.Run("restoring a child does not touch the rest", func(t *testing.T) {
		e := newEnv()
		manager := e.state.addUser(domain.RoleManager, town)
		root := e.state.addFolder(town, nil, "root")
		mid := e.state.addFolder(town, &root.ID, "mid")
		leaf := e.state.addFolder(town, &mid.ID, "leaf")

		require.NoError(t, e.trash.SoftDeleteFolder(ctx, principalFor(manager), root.ID))
		require.NoError(t, e.trash.RestoreFolder(ctx, principalFor(manager), mid.ID))

		assert.True(t, e.state.folders[root.ID].IsDeleted())
		assert.False(t, e.state.folders[mid.ID].IsDeleted())
		assert.False(t, e.state.folders[leaf.ID].IsDeleted())
	})

	t.Run("basic user needs write permission to restore", func(t *testing.T) {
		e := newEnv()
		manager := e.state.addUser(domain.RoleManager, town)
		basic := e.state.addUser(domain.RoleBasic, town)
		folder := e.state.addFolder(town, nil, "docs")

		_, err := e.perms.Grant(ctx, principalFor(manager), GrantRequest{
			UserID: basic.ID, FolderID: &folder.ID, Type: domain.PermissionDelete,
		})
		require.NoError(t, err)
		_, err = e.perms.Grant(ctx, principalFor(manager), GrantRequest{
			UserID: basic.ID, FolderID: &folder.ID, Type: domain.PermissionWrite,
		})
		require.NoError(t, err)

		require.NoError(t, e.trash.SoftDeleteFolder(ctx, principalFor(basic), folder.ID))
		require.NoError(t, e.trash.RestoreFolder(ctx, principalFor(basic), folder.ID))
		assert.False(t, e.state.folders[folder.ID].IsDeleted())
	})

	t.Run("live folder cannot be restored", func(t *testing.T) {
		e := newEnv()
		manager := e.state.addUser(domain.RoleManager, town)
		folder := e.state.addFolder(town, nil, "docs")

		err := e.trash.RestoreFolder(ctx, principalFor(manager), folder.ID)
		assert.True(t, trace.IsNotFound(err))
	})
}

func TestRestoreFile(t *testing.T) {
	ctx := context.Background()
	town := uuid.New()

	t.Run("restores trashed ancestors on the way up", func(t *testing.T) {
		e := newEnv()
		manager := e.state.addUser(domain.RoleManager, town)
		root := e.state.addFolder(town, nil, "root")
		mid := e.state.addFolder(town, &root.ID, "mid")
		file := e.state.addFile(town, mid.ID, "a.pdf")
		other := e.state.addFile(town, mid.ID, "b.pdf")

		require.NoError(t, e.trash.SoftDeleteFolder(ctx, principalFor(manager), root.ID))
		require.NoError(t, e.trash.RestoreFile(ctx, principalFor(manager), file.ID))

		assert.False(t, e.state.files[file.ID].IsDeleted())
		assert.False(t, e.state.folders[mid.ID].IsDeleted())
		assert.False(t, e.state.folders[root.ID].IsDeleted())

		// другие файлы в той же папке остаются в корзине
		assert.True(t, e.state.files[other.ID].IsDeleted())
	})

	t.Run("file in a live folder restores alone", func(t *testing.T) {
		e := newEnv()
		manager := e.state.addUser(domain.RoleManager, town)
		folder := e.state.addFolder(town, nil, "docs")
		file := e.state.addFile(town, folder.ID, "a.pdf")

		require.NoError(t, e.trash.SoftDeleteFile(ctx, principalFor(manager), file.ID))
		require.NoError(t, e.trash.RestoreFile(ctx, principalFor(manager), file.ID))

		assert.False(t, e.state.files[file.ID].IsDeleted())
		assert.False(t, e.state.folders[folder.ID].IsDeleted())
	})
}

func TestPermanentDelete(t *testing.T) {
	ctx := context.Background()
	town := uuid.New()

	t.Run("removes the subtree and its objects", func(t *testing.T) {
		e := newEnv()
		manager := e.state.addUser(domain.RoleManager, town)
		root := e.state.addFolder(town, nil, "root")
		mid := e.state.addFolder(town, &root.ID, "mid")
		file := e.state.addFile(town, mid.ID, "a.pdf")
		objectKey := file.ObjectKey

		require.NoError(t, e.trash.SoftDeleteFolder(ctx, principalFor(manager), root.ID))
		require.NoError(t, e.trash.PermanentDeleteFolder(ctx, principalFor(manager), root.ID))

		assert.NotContains(t, e.state.folders, root.ID)
		assert.NotContains(t, e.state.folders, mid.ID)
		assert.NotContains(t, e.state.files, file.ID)
		assert.Contains(t, e.storage.deleted, objectKey)
	})

	t.Run("live folder cannot be purged", func(t *testing.T) {
		e := newEnv()
		manager := e.state.addUser(domain.RoleManager, town)
		folder := e.state.addFolder(town, nil, "docs")

		err := e.trash.PermanentDeleteFolder(ctx, principalFor(manager), folder.ID)
		assert.True(t, trace.IsBadParameter(err))
		assert.Contains(t, e.state.folders, folder.ID)
	})

	t.Run("storage failure does not fail the operation", func(t *testing.T) {
		e := newEnv()
		manager := e.state.addUser(domain.RoleManager, town)
		folder := e.state.addFolder(town, nil, "docs")
		file := e.state.addFile(town, folder.ID, "a.pdf")
		e.storage.failKeys[file.ObjectKey] = true

		require.NoError(t, e.trash.SoftDeleteFile(ctx, principalFor(manager), file.ID))
		require.NoError(t, e.trash.PermanentDeleteFile(ctx, principalFor(manager), file.ID))

		// запись удалена, хотя объект остался в хранилище
		assert.NotContains(t, e.state.files, file.ID)
		assert.NotContains(t, e.storage.deleted, file.ObjectKey)
	})

	t.Run("purge covers trashed and live descendants alike", func(t *testing.T) {
		e := newEnv()
		manager := e.state.addUser(domain.RoleManager, town)
		root := e.state.addFolder(town, nil, "root")
		mid := e.state.addFolder(town, &root.ID, "mid")
		leaf := e.state.addFolder(town, &mid.ID, "leaf")

		require.NoError(t, e.trash.SoftDeleteFolder(ctx, principalFor(manager), root.ID))
		// ветка leaf возвращена из корзины, но физически осталась под root
		require.NoError(t, e.trash.RestoreFolder(ctx, principalFor(manager), leaf.ID))

		require.NoError(t, e.trash.PermanentDeleteFolder(ctx, principalFor(manager), root.ID))

		assert.NotContains(t, e.state.folders, root.ID)
		assert.NotContains(t, e.state.folders, mid.ID)
		assert.NotContains(t, e.state.folders, leaf.ID)
	})
}

func TestListTrash(t *testing.T) {
	ctx := context.Background()
	town := uuid.New()

	e := newEnv()
	manager := e.state.addUser(domain.RoleManager, town)
	folder := e.state.addFolder(town, nil, "docs")
	file := e.state.addFile(town, folder.ID, "a.pdf")
	e.state.addFolder(town, nil, "alive")

	require.NoError(t, e.trash.SoftDeleteFolder(ctx, principalFor(manager), folder.ID))

	content, err := e.trash.ListTrash(ctx, principalFor(manager))
	require.NoError(t, err)
	require.Len(t, content.Folders, 1)
	assert.Equal(t, folder.ID, content.Folders[0].ID)
	require.Len(t, content.Files, 1)
	assert.Equal(t, file.ID, content.Files[0].ID)
}

package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/gravitational/trace"

	"docvault/internal/domain"
)

// Тестовые реализации контрактов хранения поверх map. Все сервисные тесты
// работают против них, база данных не нужна.

type state struct {
	folders map[uuid.UUID]*domain.Folder
	files   map[uuid.UUID]*domain.File
	perms   map[uuid.UUID]*domain.Permission
	users   map[uuid.UUID]*domain.User
}

func newState() *state {
	return &state{
		folders: make(map[uuid.UUID]*domain.Folder),
		files:   make(map[uuid.UUID]*domain.File),
		perms:   make(map[uuid.UUID]*domain.Permission),
		users:   make(map[uuid.UUID]*domain.User),
	}
}

func (s *state) addUser(role domain.Role, townID uuid.UUID) *domain.User {
	user := &domain.User{
		ID:       uuid.New(),
		Username: fmt.Sprintf("user-%s", role),
		Role:     role,
		TownID:   townID,
	}
	s.users[user.ID] = user
	return user
}

func (s *state) addFolder(townID uuid.UUID, parentID *uuid.UUID, name string) *domain.Folder {
	folder := &domain.Folder{
		ID:        uuid.New(),
		Name:      name,
		ParentID:  parentID,
		TownID:    townID,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
	s.folders[folder.ID] = folder
	return folder
}

func (s *state) addFile(townID, folderID uuid.UUID, name string) *domain.File {
	file := &domain.File{
		ID:          uuid.New(),
		Name:        name,
		ContentType: "application/pdf",
		ObjectKey:   uuid.NewString() + ".pdf",
		FolderID:    folderID,
		TownID:      townID,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	s.files[file.ID] = file
	return file
}

func (s *state) trash(ids ...uuid.UUID) {
	now := time.Now()
	for _, id := range ids {
		if f, ok := s.folders[id]; ok {
			f.DeletedAt = &now
		}
		if f, ok := s.files[id]; ok {
			f.DeletedAt = &now
		}
	}
}

type memFolderStore struct {
	s *state
}

func (m *memFolderStore) Create(ctx context.Context, folder *domain.Folder) error {
	cp := *folder
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.s.folders[cp.ID] = &cp
	folder.CreatedAt = cp.CreatedAt
	folder.UpdatedAt = cp.UpdatedAt
	return nil
}

func (m *memFolderStore) Get(ctx context.Context, id uuid.UUID) (*domain.Folder, error) {
	folder, ok := m.s.folders[id]
	if !ok {
		return nil, trace.NotFound("folder not found")
	}
	cp := *folder
	return &cp, nil
}

func (m *memFolderStore) GetLive(ctx context.Context, id, townID uuid.UUID) (*domain.Folder, error) {
	folder, ok := m.s.folders[id]
	if !ok || folder.TownID != townID || folder.IsDeleted() {
		return nil, trace.NotFound("folder not found")
	}
	cp := *folder
	return &cp, nil
}

func (m *memFolderStore) GetAny(ctx context.Context, id, townID uuid.UUID) (*domain.Folder, error) {
	folder, ok := m.s.folders[id]
	if !ok || folder.TownID != townID {
		return nil, trace.NotFound("folder not found")
	}
	cp := *folder
	return &cp, nil
}

func (m *memFolderStore) GetTrashed(ctx context.Context, id, townID uuid.UUID) (*domain.Folder, error) {
	folder, ok := m.s.folders[id]
	if !ok || folder.TownID != townID || !folder.IsDeleted() {
		return nil, trace.NotFound("folder not found")
	}
	cp := *folder
	return &cp, nil
}

func (m *memFolderStore) list(townID uuid.UUID, keep func(*domain.Folder) bool) []domain.Folder {
	var out []domain.Folder
	for _, folder := range m.s.folders {
		if folder.TownID == townID && keep(folder) {
			out = append(out, *folder)
		}
	}
	return out
}

func (m *memFolderStore) ListLiveByTown(ctx context.Context, townID uuid.UUID) ([]domain.Folder, error) {
	return m.list(townID, func(f *domain.Folder) bool { return !f.IsDeleted() }), nil
}

func (m *memFolderStore) ListLiveByParent(ctx context.Context, townID uuid.UUID, parentID *uuid.UUID) ([]domain.Folder, error) {
	return m.list(townID, func(f *domain.Folder) bool {
		if f.IsDeleted() {
			return false
		}
		if parentID == nil {
			return f.ParentID == nil
		}
		return f.ParentID != nil && *f.ParentID == *parentID
	}), nil
}

func (m *memFolderStore) ListTrashedByTown(ctx context.Context, townID uuid.UUID) ([]domain.Folder, error) {
	return m.list(townID, func(f *domain.Folder) bool { return f.IsDeleted() }), nil
}

func (m *memFolderStore) ListByTown(ctx context.Context, townID uuid.UUID) ([]domain.Folder, error) {
	return m.list(townID, func(f *domain.Folder) bool { return true }), nil
}

func (m *memFolderStore) ExistsByNameAndParent(ctx context.Context, townID uuid.UUID, parentID *uuid.UUID, name string) (bool, error) {
	siblings, _ := m.ListLiveByParent(ctx, townID, parentID)
	for i := range siblings {
		if siblings[i].Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (m *memFolderStore) Update(ctx context.Context, folder *domain.Folder) error {
	stored, ok := m.s.folders[folder.ID]
	if !ok {
		return trace.NotFound("folder not found")
	}
	stored.Name = folder.Name
	stored.Favorite = folder.Favorite
	stored.UpdatedBy = folder.UpdatedBy
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *memFolderStore) SetParent(ctx context.Context, id, parentID, updatedBy uuid.UUID) error {
	stored, ok := m.s.folders[id]
	if !ok {
		return trace.NotFound("folder not found")
	}
	pid := parentID
	uid := updatedBy
	stored.ParentID = &pid
	stored.UpdatedBy = &uid
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *memFolderStore) MarkDeleted(ctx context.Context, ids []uuid.UUID, deletedBy uuid.UUID, at time.Time) error {
	for _, id := range ids {
		if stored, ok := m.s.folders[id]; ok {
			t := at
			uid := deletedBy
			stored.DeletedAt = &t
			stored.DeletedBy = &uid
		}
	}
	return nil
}

func (m *memFolderStore) ClearDeleted(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if stored, ok := m.s.folders[id]; ok {
			stored.DeletedAt = nil
			stored.DeletedBy = nil
		}
	}
	return nil
}

func (m *memFolderStore) Remove(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		delete(m.s.folders, id)
	}
	return nil
}

type memFileStore struct {
	s *state
}

func (m *memFileStore) Create(ctx context.Context, file *domain.File) error {
	cp := *file
	cp.CreatedAt = time.Now()
	cp.UpdatedAt = cp.CreatedAt
	m.s.files[cp.ID] = &cp
	return nil
}

func (m *memFileStore) GetLive(ctx context.Context, id, townID uuid.UUID) (*domain.File, error) {
	file, ok := m.s.files[id]
	if !ok || file.TownID != townID || file.IsDeleted() {
		return nil, trace.NotFound("file not found")
	}
	cp := *file
	return &cp, nil
}

func (m *memFileStore) GetAny(ctx context.Context, id, townID uuid.UUID) (*domain.File, error) {
	file, ok := m.s.files[id]
	if !ok || file.TownID != townID {
		return nil, trace.NotFound("file not found")
	}
	cp := *file
	return &cp, nil
}

func (m *memFileStore) GetTrashed(ctx context.Context, id, townID uuid.UUID) (*domain.File, error) {
	file, ok := m.s.files[id]
	if !ok || file.TownID != townID || !file.IsDeleted() {
		return nil, trace.NotFound("file not found")
	}
	cp := *file
	return &cp, nil
}

func (m *memFileStore) listByFolders(folderIDs []uuid.UUID, keep func(*domain.File) bool) []domain.File {
	inSet := make(map[uuid.UUID]bool, len(folderIDs))
	for _, id := range folderIDs {
		inSet[id] = true
	}
	var out []domain.File
	for _, file := range m.s.files {
		if inSet[file.FolderID] && keep(file) {
			out = append(out, *file)
		}
	}
	return out
}

func (m *memFileStore) ListLiveByFolders(ctx context.Context, folderIDs []uuid.UUID) ([]domain.File, error) {
	return m.listByFolders(folderIDs, func(f *domain.File) bool { return !f.IsDeleted() }), nil
}

func (m *memFileStore) ListTrashedByFolders(ctx context.Context, folderIDs []uuid.UUID) ([]domain.File, error) {
	return m.listByFolders(folderIDs, func(f *domain.File) bool { return f.IsDeleted() }), nil
}

func (m *memFileStore) ListByFolders(ctx context.Context, folderIDs []uuid.UUID) ([]domain.File, error) {
	return m.listByFolders(folderIDs, func(f *domain.File) bool { return true }), nil
}

func (m *memFileStore) ListTrashedByTown(ctx context.Context, townID uuid.UUID) ([]domain.File, error) {
	var out []domain.File
	for _, file := range m.s.files {
		if file.TownID == townID && file.IsDeleted() {
			out = append(out, *file)
		}
	}
	return out, nil
}

func (m *memFileStore) Update(ctx context.Context, file *domain.File) error {
	stored, ok := m.s.files[file.ID]
	if !ok {
		return trace.NotFound("file not found")
	}
	stored.Name = file.Name
	stored.Favorite = file.Favorite
	stored.UpdatedBy = file.UpdatedBy
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *memFileStore) SetFolder(ctx context.Context, id, folderID, updatedBy uuid.UUID) error {
	stored, ok := m.s.files[id]
	if !ok {
		return trace.NotFound("file not found")
	}
	uid := updatedBy
	stored.FolderID = folderID
	stored.UpdatedBy = &uid
	stored.UpdatedAt = time.Now()
	return nil
}

func (m *memFileStore) TouchLastSeen(ctx context.Context, id uuid.UUID, at time.Time) error {
	stored, ok := m.s.files[id]
	if !ok {
		return trace.NotFound("file not found")
	}
	t := at
	stored.LastSeen = &t
	return nil
}

func (m *memFileStore) MarkDeleted(ctx context.Context, ids []uuid.UUID, deletedBy uuid.UUID, at time.Time) error {
	for _, id := range ids {
		if stored, ok := m.s.files[id]; ok {
			t := at
			uid := deletedBy
			stored.DeletedAt = &t
			stored.DeletedBy = &uid
		}
	}
	return nil
}

func (m *memFileStore) ClearDeleted(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if stored, ok := m.s.files[id]; ok {
			stored.DeletedAt = nil
			stored.DeletedBy = nil
		}
	}
	return nil
}

func (m *memFileStore) Remove(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		delete(m.s.files, id)
	}
	return nil
}

type memPermissionStore struct {
	s *state
}

func (m *memPermissionStore) Create(ctx context.Context, permission *domain.Permission) error {
	cp := *permission
	cp.CreatedAt = time.Now()
	m.s.perms[cp.ID] = &cp
	return nil
}

func (m *memPermissionStore) Get(ctx context.Context, id uuid.UUID) (*domain.Permission, error) {
	permission, ok := m.s.perms[id]
	if !ok {
		return nil, trace.NotFound("permission not found")
	}
	cp := *permission
	return &cp, nil
}

func (m *memPermissionStore) Exists(ctx context.Context, userID, resourceID uuid.UUID, isFolder bool, permType domain.PermissionType) (bool, error) {
	for _, p := range m.s.perms {
		if p.UserID != userID || p.Type != permType {
			continue
		}
		if isFolder && p.FolderID != nil && *p.FolderID == resourceID {
			return true, nil
		}
		if !isFolder && p.FileID != nil && *p.FileID == resourceID {
			return true, nil
		}
	}
	return false, nil
}

func (m *memPermissionStore) Delete(ctx context.Context, id uuid.UUID) error {
	if _, ok := m.s.perms[id]; !ok {
		return trace.NotFound("permission not found")
	}
	delete(m.s.perms, id)
	return nil
}

func (m *memPermissionStore) ListAll(ctx context.Context) ([]domain.Permission, error) {
	var out []domain.Permission
	for _, p := range m.s.perms {
		out = append(out, *p)
	}
	return out, nil
}

func (m *memPermissionStore) ListByUser(ctx context.Context, userID uuid.UUID) ([]domain.Permission, error) {
	var out []domain.Permission
	for _, p := range m.s.perms {
		if p.UserID == userID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (m *memPermissionStore) ListByGranter(ctx context.Context, granterID uuid.UUID) ([]domain.Permission, error) {
	var out []domain.Permission
	for _, p := range m.s.perms {
		if p.GrantedBy == granterID {
			out = append(out, *p)
		}
	}
	return out, nil
}

type memUserStore struct {
	s *state
}

func (m *memUserStore) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	user, ok := m.s.users[id]
	if !ok {
		return nil, trace.NotFound("user not found")
	}
	cp := *user
	return &cp, nil
}

// nopTx выполняет функцию без настоящей транзакции
type nopTx struct{}

func (nopTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

// fakeStorage имитирует объектное хранилище
type fakeStorage struct {
	uploaded []string
	deleted  []string
	failKeys map[string]bool
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{failKeys: make(map[string]bool)}
}

func (f *fakeStorage) Upload(data []byte, contentType string) (string, error) {
	key := uuid.NewString() + ".pdf"
	f.uploaded = append(f.uploaded, key)
	return key, nil
}

func (f *fakeStorage) Delete(key string) error {
	if f.failKeys[key] {
		return fmt.Errorf("storage unavailable")
	}
	f.deleted = append(f.deleted, key)
	return nil
}

func (f *fakeStorage) PresignURL(key string) (string, error) {
	return "https://storage.local/" + key, nil
}

// env собирает полный комплект сервисов поверх одного состояния
type env struct {
	state   *state
	storage *fakeStorage

	perms   *PermissionService
	folders *FolderService
	files   *FileService
	trash   *TrashService
}

func newEnv() *env {
	s := newState()
	folderStore := &memFolderStore{s: s}
	fileStore := &memFileStore{s: s}
	permStore := &memPermissionStore{s: s}
	userStore := &memUserStore{s: s}
	storage := newFakeStorage()
	tx := nopTx{}

	perms := NewPermissionService(permStore, userStore, folderStore, fileStore, tx)

	return &env{
		state:   s,
		storage: storage,
		perms:   perms,
		folders: NewFolderService(folderStore, fileStore, perms, tx),
		files:   NewFileService(fileStore, folderStore, perms, storage, tx),
		trash:   NewTrashService(folderStore, fileStore, perms, storage, tx),
	}
}

func principalFor(user *domain.User) domain.Principal {
	return domain.Principal{
		UserID: user.ID,
		Role:   user.Role,
		TownID: user.TownID,
	}
}

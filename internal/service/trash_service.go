package service

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/gravitational/trace"

	"docvault/internal/domain"
	"docvault/internal/service/s3"
)

// TrashService управляет жизненным циклом ресурсов: мягкое удаление,
// восстановление и окончательное удаление. Каскады по дереву выполняются
// обходом в ширину над срезом папок города, а не рекурсией в SQL, чтобы
// состав каскада был виден и проверяем в одном месте.
type TrashService struct {
	folderRepo FolderStore
	fileRepo   FileStore
	permSvc    *PermissionService
	storage    s3.Storage
	tx         TxRunner
}

func NewTrashService(
	folderRepo FolderStore,
	fileRepo FileStore,
	permSvc *PermissionService,
	storage s3.Storage,
	tx TxRunner,
) *TrashService {
	return &TrashService{
		folderRepo: folderRepo,
		fileRepo:   fileRepo,
		permSvc:    permSvc,
		storage:    storage,
		tx:         tx,
	}
}

// SoftDeleteFolder помечает папку удаленной вместе со всем живым поддеревом:
// вложенными папками и файлами в них.
func (s *TrashService) SoftDeleteFolder(ctx context.Context, principal domain.Principal, folderID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.folderRepo.GetLive(ctx, folderID, principal.TownID); err != nil {
			return trace.Wrap(err)
		}

		ok, err := s.permSvc.Check(ctx, principal, folderID, true, domain.PermissionDelete)
		if err != nil {
			return trace.Wrap(err)
		}
		if !ok {
			return trace.AccessDenied("you do not have delete permission for this folder")
		}

		live, err := s.folderRepo.ListLiveByTown(ctx, principal.TownID)
		if err != nil {
			return trace.Wrap(err)
		}

		folderIDs := newFolderIndex(live).subtree(folderID)
		now := time.Now()

		if err := s.folderRepo.MarkDeleted(ctx, folderIDs, principal.UserID, now); err != nil {
			return trace.Wrap(err)
		}

		files, err := s.fileRepo.ListLiveByFolders(ctx, folderIDs)
		if err != nil {
			return trace.Wrap(err)
		}
		if len(files) == 0 {
			return nil
		}

		fileIDs := make([]uuid.UUID, 0, len(files))
		for _, f := range files {
			fileIDs = append(fileIDs, f.ID)
		}

		return trace.Wrap(s.fileRepo.MarkDeleted(ctx, fileIDs, principal.UserID, now))
	})
}

// SoftDeleteFile помечает файл удаленным
func (s *TrashService) SoftDeleteFile(ctx context.Context, principal domain.Principal, fileID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		file, err := s.fileRepo.GetLive(ctx, fileID, principal.TownID)
		if err != nil {
			return trace.Wrap(err)
		}

		ok, err := s.permSvc.Check(ctx, principal, fileID, false, domain.PermissionDelete)
		if err != nil {
			return trace.Wrap(err)
		}
		if !ok {
			return trace.AccessDenied("you do not have delete permission for this file")
		}

		return trace.Wrap(s.fileRepo.MarkDeleted(ctx, []uuid.UUID{file.ID}, principal.UserID, time.Now()))
	})
}

// RestoreFolder возвращает папку из корзины вместе с удаленным поддеревом.
// Обход строится только по удаленным папкам, поэтому живые узлы внутри
// поддерева каскад не трогает и уже восстановленные ветки не задевает.
func (s *TrashService) RestoreFolder(ctx context.Context, principal domain.Principal, folderID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if _, err := s.folderRepo.GetTrashed(ctx, folderID, principal.TownID); err != nil {
			return trace.Wrap(err)
		}

		ok, err := s.permSvc.Check(ctx, principal, folderID, true, domain.PermissionWrite)
		if err != nil {
			return trace.Wrap(err)
		}
		if !ok {
			return trace.AccessDenied("you do not have write permission to restore this folder")
		}

		trashed, err := s.folderRepo.ListTrashedByTown(ctx, principal.TownID)
		if err != nil {
			return trace.Wrap(err)
		}

		folderIDs := newFolderIndex(trashed).subtree(folderID)

		if err := s.folderRepo.ClearDeleted(ctx, folderIDs); err != nil {
			return trace.Wrap(err)
		}

		files, err := s.fileRepo.ListTrashedByFolders(ctx, folderIDs)
		if err != nil {
			return trace.Wrap(err)
		}
		if len(files) == 0 {
			return nil
		}

		fileIDs := make([]uuid.UUID, 0, len(files))
		for _, f := range files {
			fileIDs = append(fileIDs, f.ID)
		}

		return trace.Wrap(s.fileRepo.ClearDeleted(ctx, fileIDs))
	})
}

// RestoreFile возвращает файл из корзины. Чтобы файл не оказался внутри
// удаленной папки, цепочка предков проходится вверх и все удаленные папки
// на пути тоже восстанавливаются.
func (s *TrashService) RestoreFile(ctx context.Context, principal domain.Principal, fileID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		file, err := s.fileRepo.GetTrashed(ctx, fileID, principal.TownID)
		if err != nil {
			return trace.Wrap(err)
		}

		ok, err := s.permSvc.Check(ctx, principal, fileID, false, domain.PermissionWrite)
		if err != nil {
			return trace.Wrap(err)
		}
		if !ok {
			return trace.AccessDenied("you do not have write permission to restore this file")
		}

		all, err := s.folderRepo.ListByTown(ctx, principal.TownID)
		if err != nil {
			return trace.Wrap(err)
		}

		index := newFolderIndex(all)

		var trashedAncestors []uuid.UUID
		for _, folder := range index.ancestors(file.FolderID) {
			if folder.IsDeleted() {
				trashedAncestors = append(trashedAncestors, folder.ID)
			}
		}

		if len(trashedAncestors) > 0 {
			if err := s.folderRepo.ClearDeleted(ctx, trashedAncestors); err != nil {
				return trace.Wrap(err)
			}
		}

		return trace.Wrap(s.fileRepo.ClearDeleted(ctx, []uuid.UUID{file.ID}))
	})
}

// PermanentDeleteFolder безвозвратно удаляет папку из корзины вместе со всем
// поддеревом в любом состоянии. Записи удаляются в одной транзакции, объекты
// в хранилище зачищаются уже после фиксации: неудачная зачистка оставляет
// осиротевший объект, но не ломает операцию.
func (s *TrashService) PermanentDeleteFolder(ctx context.Context, principal domain.Principal, folderID uuid.UUID) error {
	var objectKeys []string

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		folder, err := s.folderRepo.GetAny(ctx, folderID, principal.TownID)
		if err != nil {
			return trace.Wrap(err)
		}
		if !folder.IsDeleted() {
			return trace.BadParameter("folder is not in trash")
		}

		ok, err := s.permSvc.Check(ctx, principal, folderID, true, domain.PermissionDelete)
		if err != nil {
			return trace.Wrap(err)
		}
		if !ok {
			return trace.AccessDenied("you do not have delete permission for this folder")
		}

		all, err := s.folderRepo.ListByTown(ctx, principal.TownID)
		if err != nil {
			return trace.Wrap(err)
		}

		folderIDs := newFolderIndex(all).subtree(folderID)

		files, err := s.fileRepo.ListByFolders(ctx, folderIDs)
		if err != nil {
			return trace.Wrap(err)
		}

		if len(files) > 0 {
			fileIDs := make([]uuid.UUID, 0, len(files))
			for _, f := range files {
				fileIDs = append(fileIDs, f.ID)
				objectKeys = append(objectKeys, f.ObjectKey)
			}
			if err := s.fileRepo.Remove(ctx, fileIDs); err != nil {
				return trace.Wrap(err)
			}
		}

		return trace.Wrap(s.folderRepo.Remove(ctx, folderIDs))
	})
	if err != nil {
		return trace.Wrap(err)
	}

	s.cleanupObjects(objectKeys)

	return nil
}

// PermanentDeleteFile безвозвратно удаляет файл из корзины
func (s *TrashService) PermanentDeleteFile(ctx context.Context, principal domain.Principal, fileID uuid.UUID) error {
	var objectKey string

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		file, err := s.fileRepo.GetAny(ctx, fileID, principal.TownID)
		if err != nil {
			return trace.Wrap(err)
		}
		if !file.IsDeleted() {
			return trace.BadParameter("file is not in trash")
		}

		ok, err := s.permSvc.Check(ctx, principal, fileID, false, domain.PermissionDelete)
		if err != nil {
			return trace.Wrap(err)
		}
		if !ok {
			return trace.AccessDenied("you do not have delete permission for this file")
		}

		objectKey = file.ObjectKey

		return trace.Wrap(s.fileRepo.Remove(ctx, []uuid.UUID{file.ID}))
	})
	if err != nil {
		return trace.Wrap(err)
	}

	s.cleanupObjects([]string{objectKey})

	return nil
}

// ListTrash возвращает содержимое корзины города
func (s *TrashService) ListTrash(ctx context.Context, principal domain.Principal) (*domain.FolderContent, error) {
	var content *domain.FolderContent

	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		folders, err := s.folderRepo.ListTrashedByTown(ctx, principal.TownID)
		if err != nil {
			return trace.Wrap(err)
		}

		files, err := s.fileRepo.ListTrashedByTown(ctx, principal.TownID)
		if err != nil {
			return trace.Wrap(err)
		}

		content = &domain.FolderContent{Folders: folders, Files: files}
		return nil
	})
	if err != nil {
		return nil, trace.Wrap(err)
	}

	return content, nil
}

func (s *TrashService) cleanupObjects(keys []string) {
	for _, key := range keys {
		if key == "" {
			continue
		}
		if err := s.storage.Delete(key); err != nil {
			log.Printf("WARN: failed to delete object %s from storage: %v", key, err)
		}
	}
}

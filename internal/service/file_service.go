package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/gravitational/trace"

	"docvault/internal/domain"
	"docvault/internal/service/s3"
)

// FileService отвечает за файлы: загрузку, переименование, перемещение и
// выдачу временных ссылок на просмотр.
type FileService struct {
	fileRepo   FileStore
	folderRepo FolderStore
	permSvc    *PermissionService
	storage    s3.Storage
	tx         TxRunner
}

func NewFileService(
	fileRepo FileStore,
	folderRepo FolderStore,
	permSvc *PermissionService,
	storage s3.Storage,
	tx TxRunner,
) *FileService {
	return &FileService{
		fileRepo:   fileRepo,
		folderRepo: folderRepo,
		permSvc:    permSvc,
		storage:    storage,
		tx:         tx,
	}
}

// Upload загружает PDF-документ в папку. Сначала байты уходят в хранилище,
// затем в одной транзакции создается запись с полученным ключом объекта.
func (s *FileService) Upload(ctx context.Context, principal domain.Principal, upload domain.FileUpload) (*domain.File, error) {
	if len(upload.Data) == 0 {
		return nil, trace.BadParameter("file is empty")
	}
	if upload.ContentType != "application/pdf" {
		return nil, trace.BadParameter("only PDF allowed")
	}

	if _, err := s.folderRepo.GetLive(ctx, upload.FolderID, principal.TownID); err != nil {
		return nil, trace.Wrap(err)
	}

	ok, err := s.permSvc.Check(ctx, principal, upload.FolderID, true, domain.PermissionWrite)
	if err != nil {
		return nil, trace.Wrap(err)
	}
	if !ok {
		return nil, trace.AccessDenied("you do not have write permission for this folder")
	}

	objectKey, err := s.storage.Upload(upload.Data, upload.ContentType)
	if err != nil {
		return nil, trace.Wrap(err)
	}

	userID := principal.UserID
	file := &domain.File{
		ID:          uuid.New(),
		Name:        upload.Name,
		SizeBytes:   int64(len(upload.Data)),
		ContentType: upload.ContentType,
		ObjectKey:   objectKey,
		FolderID:    upload.FolderID,
		TownID:      principal.TownID,
		UploadedBy:  &userID,
	}

	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		return trace.Wrap(s.fileRepo.Create(ctx, file))
	})
	if err != nil {
		return nil, trace.Wrap(err)
	}

	return file, nil
}

// Rename меняет имя файла
func (s *FileService) Rename(ctx context.Context, principal domain.Principal, fileID uuid.UUID, name string) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		file, err := s.fileRepo.GetLive(ctx, fileID, principal.TownID)
		if err != nil {
			return trace.Wrap(err)
		}

		ok, err := s.permSvc.Check(ctx, principal, fileID, false, domain.PermissionWrite)
		if err != nil {
			return trace.Wrap(err)
		}
		if !ok {
			return trace.AccessDenied("you do not have write permission to rename this file")
		}

		userID := principal.UserID
		file.Name = name
		file.UpdatedBy = &userID

		return trace.Wrap(s.fileRepo.Update(ctx, file))
	})
}

// ToggleFavorite переключает флаг избранного
func (s *FileService) ToggleFavorite(ctx context.Context, principal domain.Principal, fileID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		file, err := s.fileRepo.GetLive(ctx, fileID, principal.TownID)
		if err != nil {
			return trace.Wrap(err)
		}

		ok, err := s.permSvc.Check(ctx, principal, fileID, false, domain.PermissionWrite)
		if err != nil {
			return trace.Wrap(err)
		}
		if !ok {
			return trace.AccessDenied("you do not have write permission for this file")
		}

		userID := principal.UserID
		file.Favorite = !file.Favorite
		file.UpdatedBy = &userID

		return trace.Wrap(s.fileRepo.Update(ctx, file))
	})
}

// Move переносит файл в другую папку того же города
func (s *FileService) Move(ctx context.Context, principal domain.Principal, fileID, targetFolderID uuid.UUID) error {
	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		file, err := s.fileRepo.GetLive(ctx, fileID, principal.TownID)
		if err != nil {
			return trace.Wrap(err)
		}

		target, err := s.folderRepo.Get(ctx, targetFolderID)
		if err != nil {
			if trace.IsNotFound(err) {
				return trace.NotFound("target folder not found")
			}
			return trace.Wrap(err)
		}

		ok, err := s.permSvc.Check(ctx, principal, fileID, false, domain.PermissionWrite)
		if err != nil {
			return trace.Wrap(err)
		}
		if !ok {
			return trace.AccessDenied("you do not have write permission for the original file")
		}

		ok, err = s.permSvc.Check(ctx, principal, targetFolderID, true, domain.PermissionWrite)
		if err != nil {
			return trace.Wrap(err)
		}
		if !ok {
			return trace.AccessDenied("you do not have write permission for the target folder")
		}

		if file.TownID != target.TownID {
			return trace.AccessDenied("different towns")
		}

		if target.IsDeleted() {
			return trace.BadParameter("cannot move file into a deleted folder")
		}

		return trace.Wrap(s.fileRepo.SetFolder(ctx, file.ID, target.ID, principal.UserID))
	})
}

// ViewURL выдает временную ссылку на просмотр файла и отмечает время
// последнего просмотра.
func (s *FileService) ViewURL(ctx context.Context, principal domain.Principal, fileID uuid.UUID) (string, error) {
	file, err := s.fileRepo.GetLive(ctx, fileID, principal.TownID)
	if err != nil {
		return "", trace.Wrap(err)
	}

	ok, err := s.permSvc.Check(ctx, principal, fileID, false, domain.PermissionRead)
	if err != nil {
		return "", trace.Wrap(err)
	}
	if !ok {
		return "", trace.AccessDenied("you do not have read permission for this file")
	}

	if err := s.fileRepo.TouchLastSeen(ctx, file.ID, time.Now()); err != nil {
		return "", trace.Wrap(err)
	}

	url, err := s.storage.PresignURL(file.ObjectKey)
	if err != nil {
		return "", trace.Wrap(err)
	}

	return url, nil
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package hipchat

import (
	"encoding/xml"
	"errors"
	"fmt"
)

// Element fields are pointers so that an absent element (nil) can be told
// apart from an empty one ("").

type roomsDocument struct {
	XMLName xml.Name      `xml:"rooms"`
	Rooms   []roomElement `xml:"room"`
}

type roomElement struct {
	ID          *string `xml:"room_id"`
	Name        *string `xml:"name"`
	Topic       *string `xml:"topic"`
	LastActive  *string `xml:"last_active"`
	OwnerUserID *string `xml:"owner_user_id"`
}

type messagesDocument struct {
	XMLName  xml.Name         `xml:"messages"`
	Messages []messageElement `xml:"message"`
}

type messageElement struct {
	Date *string      `xml:"date"`
	From *userElement `xml:"from"`
	File *fileElement `xml:"file"`
	Text *string      `xml:"message"`
}

type userElement struct {
	Name *string `xml:"name"`
	ID   *string `xml:"user_id"`
}

type fileElement struct {
	Name *string `xml:"name"`
	Size *string `xml:"size"`
	URL  *string `xml:"url"`
}

var errMissingElement = errors.New("required element is missing")

// DecodeRooms parses a rooms/list XML document. Every room must carry
// room_id, name, topic, last_active, and owner_user_id. A document with no
// rooms yields an empty, non-nil slice.
func DecodeRooms(body []byte) ([]Room, error) {
	var document roomsDocument
	if err := xml.Unmarshal(body, &document); err != nil {
		return nil, &DecodeError{Target: "rooms", Body: string(body), Err: err}
	}

	rooms := make([]Room, 0, len(document.Rooms))
	for index, element := range document.Rooms {
		room, err := element.toRoom(fmt.Sprintf("room[%d]", index))
		if err != nil {
			return nil, withDocument(err, "rooms", body)
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}

func (e roomElement) toRoom(path string) (Room, error) {
	id, err := requireText(path, "room_id", e.ID)
	if err != nil {
		return Room{}, err
	}
	name, err := requireText(path, "name", e.Name)
	if err != nil {
		return Room{}, err
	}
	topic, err := requireText(path, "topic", e.Topic)
	if err != nil {
		return Room{}, err
	}
	lastActive, err := requireText(path, "last_active", e.LastActive)
	if err != nil {
		return Room{}, err
	}
	owner, err := requireText(path, "owner_user_id", e.OwnerUserID)
	if err != nil {
		return Room{}, err
	}

	room := Room{Name: name, Topic: topic}
	if room.ID, err = parseInt(path+".room_id", id); err != nil {
		return Room{}, err
	}
	if room.LastActive, err = ParseEpoch(path+".last_active", lastActive); err != nil {
		return Room{}, err
	}
	if room.OwnerUserID, err = parseInt(path+".owner_user_id", owner); err != nil {
		return Room{}, err
	}
	return room, nil
}

// DecodeMessages parses a rooms/history XML document. Every message must
// carry date, from (with a name), and message; file is optional but must
// be complete when present. A document with no messages yields an empty,
// non-nil slice.
func DecodeMessages(body []byte) ([]Message, error) {
	var document messagesDocument
	if err := xml.Unmarshal(body, &document); err != nil {
		return nil, &DecodeError{Target: "messages", Body: string(body), Err: err}
	}

	messages := make([]Message, 0, len(document.Messages))
	for index, element := range document.Messages {
		message, err := element.toMessage(fmt.Sprintf("message[%d]", index))
		if err != nil {
			return nil, withDocument(err, "messages", body)
		}
		messages = append(messages, message)
	}
	return messages, nil
}

func (e messageElement) toMessage(path string) (Message, error) {
	date, err := requireText(path, "date", e.Date)
	if err != nil {
		return Message{}, err
	}
	if e.From == nil {
		return Message{}, &DecodeError{Field: path + ".from", Err: errMissingElement}
	}
	senderName, err := requireText(path+".from", "name", e.From.Name)
	if err != nil {
		return Message{}, err
	}
	text, err := requireText(path, "message", e.Text)
	if err != nil {
		return Message{}, err
	}

	message := Message{
		From: User{Name: senderName},
		Text: text,
	}
	if e.From.ID != nil {
		message.From.ID = *e.From.ID
	}
	if message.Date, err = ParseMessageDate(path+".date", date); err != nil {
		return Message{}, err
	}

	if e.File != nil {
		filePath := path + ".file"
		name, err := requireText(filePath, "name", e.File.Name)
		if err != nil {
			return Message{}, err
		}
		size, err := requireText(filePath, "size", e.File.Size)
		if err != nil {
			return Message{}, err
		}
		fileURL, err := requireText(filePath, "url", e.File.URL)
		if err != nil {
			return Message{}, err
		}
		message.Attachment = &File{Name: name, Size: size, URL: fileURL}
	}
	return message, nil
}

func requireText(path, name string, value *string) (string, error) {
	if value == nil {
		return "", &DecodeError{Field: path + "." + name, Err: errMissingElement}
	}
	return *value, nil
}

// withDocument fills the document-level context of a field error.
func withDocument(err error, target string, body []byte) error {
	var decodeErr *DecodeError
	if errors.As(err, &decodeErr) {
		decodeErr.Target = target
		decodeErr.Body = string(body)
		return decodeErr
	}
	return &DecodeError{Target: target, Body: string(body), Err: err}
}

package application

// Clone returns a deep copy of the index. Mutating helpers operate on a clone
// so that nothing is written back until the whole operation has validated.
func (idx MeetingIndex) Clone() MeetingIndex {
	out := make(MeetingIndex, len(idx))
	for key, refs := range idx {
		out[key] = append([]UserMeetingRef(nil), refs...)
	}
	return out
}

// Bucket returns the references filed under the given key.
func (idx MeetingIndex) Bucket(key string) []UserMeetingRef {
	return idx[key]
}

// MeetingIDs returns every meeting ID in the index, bucket by bucket.
func (idx MeetingIndex) MeetingIDs() []string {
	var out []string
	for _, refs := range idx {
		for _, ref := range refs {
			out = append(out, ref.MeetingID)
		}
	}
	return out
}

// add appends a reference under the given bucket key.
func (idx MeetingIndex) add(key, meetingID string, answer Answer) {
	idx[key] = append(idx[key], UserMeetingRef{MeetingID: meetingID, Answered: answer})
}

// remove drops the reference to the given meeting from the given bucket,
// deleting the bucket when it becomes empty. It reports whether a reference
// was removed and the answer it carried.
func (idx MeetingIndex) remove(key, meetingID string) (Answer, bool) {
	refs := idx[key]
	for i, ref := range refs {
		if ref.MeetingID != meetingID {
			continue
		}
		refs = append(refs[:i], refs[i+1:]...)
		if len(refs) == 0 {
			delete(idx, key)
		} else {
			idx[key] = refs
		}
		return ref.Answered, true
	}
	return "", false
}

// setAnswer updates the answer on the reference to the given meeting. It
// reports whether the reference was found.
func (idx MeetingIndex) setAnswer(key, meetingID string, answer Answer) bool {
	refs := idx[key]
	for i, ref := range refs {
		if ref.MeetingID == meetingID {
			refs[i].Answered = answer
			return true
		}
	}
	return false
}

// answerFor returns the answer recorded for the given meeting, or
// AnswerPending when no reference exists.
func (idx MeetingIndex) answerFor(key, meetingID string) Answer {
	for _, ref := range idx[key] {
		if ref.MeetingID == meetingID {
			return ref.Answered
		}
	}
	return AnswerPending
}
